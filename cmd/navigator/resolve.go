package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nathoo/worldnav/engine/resolve"
	"github.com/nathoo/worldnav/types"
)

var (
	resolveBatch   string
	resolveWorkers int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [X Y]",
	Short: "Print the location analysis for one point or a batch file",
	Args: func(cmd *cobra.Command, args []string) error {
		if resolveBatch != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWorld()
		if err != nil {
			return err
		}
		r := resolve.New(w, cfg.ResolverScale())

		var points []types.Point
		if resolveBatch != "" {
			points, err = readPoints(resolveBatch)
			if err != nil {
				return err
			}
		} else {
			p, err := parsePoint(args[0] + " " + args[1])
			if err != nil {
				return err
			}
			points = []types.Point{p}
		}

		lines, err := resolve.DescribeAll(cmd.Context(), r, points, resolveWorkers)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveBatch, "batch", "", "File with one \"X, Y\" point per line")
	resolveCmd.Flags().IntVar(&resolveWorkers, "workers", 8, "Concurrent resolvers for --batch")
	rootCmd.AddCommand(resolveCmd)
}

// readPoints parses a batch file. Blank lines and # comments are skipped.
func readPoints(path string) ([]types.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []types.Point
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := parsePoint(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		points = append(points, p)
	}
	return points, scanner.Err()
}

// parsePoint accepts "X Y", "X, Y" or "[X, Y]".
func parsePoint(s string) (types.Point, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]()")
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) != 2 {
		return types.Point{}, fmt.Errorf("expected two coordinates, got %q", s)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("bad x coordinate %q", fields[0])
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("bad y coordinate %q", fields[1])
	}
	return types.Point{X: x, Y: y}, nil
}
