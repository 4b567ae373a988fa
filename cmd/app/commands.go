package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/starford/lectern/internal"
	"github.com/starford/lectern/internal/reader"
	"github.com/starford/lectern/internal/termui"
)

func newReader(cmd *cli.Command) (*reader.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return internal.NewReader(cfg), nil
}

// intArg parses the positional argument at i as a positive integer.
func intArg(cmd *cli.Command, i int, name string) (int, error) {
	raw := cmd.Args().Get(i)
	if raw == "" {
		return 0, fmt.Errorf("missing %s argument", name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Usage: "Page number", Value: 1},
		&cli.IntFlag{Name: "page-size", Usage: "Results per page (5, 10, 20 or 50)", DefaultText: "from config"},
	}
}

// pageFrom reads the paging flags, falling back to the configured page size.
func pageFrom(cmd *cli.Command, svc *reader.Service) reader.Page {
	size := svc.DefaultPageSize()
	if cmd.IsSet("page-size") {
		size = int(cmd.Int("page-size"))
	}
	return reader.Page{Number: int(cmd.Int("page")), Size: size}
}

func worksCommand() *cli.Command {
	return &cli.Command{
		Name:  "works",
		Usage: "List the works of the archive",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newReader(cmd)
			if err != nil {
				return err
			}
			works, err := svc.Works(ctx)
			if err != nil {
				return err
			}
			termui.Works(os.Stdout, works)
			return nil
		},
	}
}

func tocCommand() *cli.Command {
	return &cli.Command{
		Name:      "toc",
		Usage:     "Print the table of contents of a work",
		ArgsUsage: "WORK",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			workID, err := intArg(cmd, 0, "WORK")
			if err != nil {
				return err
			}
			svc, err := newReader(cmd)
			if err != nil {
				return err
			}
			view, err := svc.TableOfContents(ctx, workID)
			if err != nil {
				return err
			}
			termui.TableOfContents(os.Stdout, view)
			return nil
		},
	}
}

func readCommand() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Print an annotated chapter",
		ArgsUsage: "WORK CHAPTER",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			workID, err := intArg(cmd, 0, "WORK")
			if err != nil {
				return err
			}
			chapter, err := intArg(cmd, 1, "CHAPTER")
			if err != nil {
				return err
			}
			svc, err := newReader(cmd)
			if err != nil {
				return err
			}
			view, err := svc.Chapter(ctx, workID, chapter)
			if err != nil {
				return err
			}
			termui.Chapter(os.Stdout, view)
			return nil
		},
	}
}

func termsCommand() *cli.Command {
	return &cli.Command{
		Name:  "terms",
		Usage: "List glossary terms",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Case-insensitive label filter"},
			&cli.IntFlag{Name: "work", Usage: "Restrict to one work"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := newReader(cmd)
			if err != nil {
				return err
			}
			view, err := svc.Glossary(ctx, int(cmd.Int("work")), cmd.String("filter"))
			if err != nil {
				return err
			}
			termui.Terms(os.Stdout, view.Terms)
			return nil
		},
	}
}

func termCommand() *cli.Command {
	return &cli.Command{
		Name:      "term",
		Usage:     "Print a term definition and the passages that mention it",
		ArgsUsage: "ID",
		Flags:     pageFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return fmt.Errorf("missing ID argument")
			}
			svc, err := newReader(cmd)
			if err != nil {
				return err
			}
			view, err := svc.Term(ctx, id, pageFrom(cmd, svc))
			if err != nil {
				return err
			}
			termui.Term(os.Stdout, view)
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search passages and terms",
		ArgsUsage: "QUERY",
		Flags: append([]cli.Flag{
			&cli.IntFlag{Name: "work", Usage: "Restrict to one work"},
			&cli.BoolFlag{Name: "exact", Usage: "Match the exact phrase, case-sensitively"},
		}, pageFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := cmd.Args().First()
			if query == "" {
				return fmt.Errorf("missing QUERY argument")
			}
			svc, err := newReader(cmd)
			if err != nil {
				return err
			}
			view, err := svc.Search(ctx, reader.Query{
				Text:   query,
				WorkID: int(cmd.Int("work")),
				Exact:  cmd.Bool("exact"),
				Page:   pageFrom(cmd, svc),
			})
			if err != nil {
				return err
			}
			termui.Search(os.Stdout, view)
			return nil
		},
	}
}
