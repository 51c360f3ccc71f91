package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/connector-hub/connector-hub/internal/descriptor"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check descriptor documents and report every violation.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args)
	},
}

type lintResult struct {
	path string
	err  error
}

func runValidate(cmd *cobra.Command, paths []string) error {
	var (
		mu      sync.Mutex
		results []lintResult
	)

	g := new(errgroup.Group)
	g.SetLimit(8)
	for _, path := range paths {
		g.Go(func() error {
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			_, lintErr := descriptor.Load(raw)
			mu.Lock()
			results = append(results, lintResult{path: path, err: lintErr})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })

	failed := 0
	for _, res := range results {
		if res.err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", res.path)
			continue
		}
		failed++
		var ve *descriptor.ValidationError
		if errors.As(res.err, &ve) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: descriptor %q has %d violation(s)\n", res.path, ve.UniqueKey, len(ve.Violations))
			for _, v := range ve.Violations {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", v)
			}
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", res.path, res.err)
	}

	if failed > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d of %d documents invalid", failed, len(results)), silent: true}
	}
	return nil
}
