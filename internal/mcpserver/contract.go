package mcpserver

// AnnotationFormatURI is the resource URI of AnnotationFormat.
const AnnotationFormatURI = "lectern://annotation-format"

// AnnotationFormat describes the plain-text notation used by the chapter and
// annotation tools.
const AnnotationFormat = `# Lectern Annotation Format

Chapter text returned by ` + "`read_chapter`" + ` and ` + "`annotate_text`" + ` is plain
Markdown with two inline annotations.

## Term links

Words or phrases that name a glossary term are written as Markdown links with
the ` + "`term:`" + ` scheme:

` + "```" + `
an immense accumulation of [commodities](term:commodity)
` + "```" + `

The link text keeps the casing of the source. The target is the term id; pass
it to ` + "`get_term`" + ` for the definition and the passages that mention it.

## Footnote markers

A footnote reference written as a period followed by a number (` + "`falls.12`" + `)
becomes ` + "`^12`" + ` after the period:

` + "```" + `
an immense accumulation of [commodities](term:commodity).^1
` + "```" + `

Footnote bodies are not part of the passage text.

## Layout

- ` + "`# Title`" + ` opens the chapter, followed by the part when there is one.
- ` + "`## Section N: Title`" + ` opens each numbered section. Passages outside a
  section appear without a heading.
- Each passage is one paragraph, prefixed with its id in brackets:
  ` + "`[1-1-1-2] The use value of a thing...`" + `
`
