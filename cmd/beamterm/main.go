package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/beamterm/archive"
	"github.com/arloliu/beamterm/beamfile"
	"github.com/arloliu/beamterm/compact"
	"github.com/arloliu/beamterm/format"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "beamterm",
		Short: "Inspect and verify compact operand terms in BEAM files",
	}

	rootCmd.AddCommand(scanCmd(), dumpCmd(), packCmd(), unpackCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan FILE...",
		Short: "Scan Code chunks and verify that decoded terms re-encode byte-identically",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0

			for _, path := range args {
				stream, name, err := loadCodeStream(path)
				if err != nil {
					return err
				}

				report := compact.Scan(stream)
				status := "ok"
				if report.Canonical != report.Terms {
					status = "MISMATCH"
					failed++
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %d terms, %d canonical, %d opcode bytes skipped [%s]\n",
					path, name, report.Terms, report.Canonical, report.Skipped, status)
			}

			if failed > 0 {
				return fmt.Errorf("%d file(s) with non-roundtripping terms", failed)
			}

			return nil
		},
	}
}

func dumpCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print the terms recognized in a module's code stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, name, err := loadCodeStream(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "module %s, %d code bytes\n", name, len(stream))

			printed := 0
			for len(stream) > 0 && (limit == 0 || printed < limit) {
				t, rest, err := compact.Decode(stream)
				if err != nil {
					stream = stream[1:]

					continue
				}

				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", t)
				stream = rest
				printed++
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after printing this many terms (0 = all)")

	return cmd
}

func packCmd() *cobra.Command {
	var output string
	var compression string

	cmd := &cobra.Command{
		Use:   "pack -o OUT FILE...",
		Short: "Store the code streams of BEAM files in a term archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := parseCompression(compression)
			if err != nil {
				return err
			}

			enc, err := archive.NewEncoder(archive.WithCompression(typ))
			if err != nil {
				return err
			}

			for _, path := range args {
				stream, name, err := loadCodeStream(path)
				if err != nil {
					return err
				}

				// The archive verifies streams term-by-term; raw code chunks
				// interleave opcodes with operands, so store the re-encoded
				// terms the scanner recognizes instead of the raw stream.
				terms, skipped := recognizedTerms(stream)
				if err := enc.Add(name, terms); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d term bytes (%d opcode bytes dropped)\n",
					name, len(terms), skipped)
			}

			data, err := enc.Finish()
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %s)\n", output, len(data), typ)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "terms.bta", "output archive path")
	cmd.Flags().StringVarP(&compression, "compression", "c", "zstd", "payload compression: none, zstd, s2, lz4")

	return cmd
}

func unpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack FILE",
		Short: "List the module streams stored in a term archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			dec, err := archive.NewDecoder(data)
			if err != nil {
				return err
			}

			h := dec.Header()
			fmt.Fprintf(cmd.OutOrStdout(), "%d modules, %s compression, created %s\n",
				dec.Modules(), h.Compression, h.CreatedAtTime().Format("2006-01-02 15:04:05"))

			for id, stream := range dec.All() {
				terms, err := compact.DecodeAll(stream)
				if err != nil {
					return fmt.Errorf("module %016x: %w", id, err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "  %016x: %d terms, %d bytes\n", id, len(terms), len(stream))
			}

			return nil
		},
	}
}

func loadCodeStream(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	f, err := beamfile.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}

	stream, err := f.CodeStream()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}

	name, err := f.ModuleName()
	if err != nil {
		name = path
	}

	return stream, name, nil
}

// recognizedTerms re-encodes every term the best-effort scanner recognizes in
// a code stream and reports how many bytes were stepped over.
func recognizedTerms(stream []byte) ([]byte, int) {
	var out []byte
	skipped := 0

	for len(stream) > 0 {
		t, rest, err := compact.Decode(stream)
		if err != nil {
			skipped++
			stream = stream[1:]

			continue
		}

		out = compact.AppendTerm(out, t)
		stream = rest
	}

	return out, skipped
}

func parseCompression(name string) (format.CompressionType, error) {
	switch name {
	case "none":
		return format.CompressionNone, nil
	case "zstd":
		return format.CompressionZstd, nil
	case "s2":
		return format.CompressionS2, nil
	case "lz4":
		return format.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, zstd, s2 or lz4)", name)
	}
}
