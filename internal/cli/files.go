package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Codeshift/internal/ingest"
)

// noAdvice — заглушка для файла без рекомендаций.
const noAdvice = "尚無建議"

// NewUploadCmd создаёт команду загрузки каталога.
func NewUploadCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "upload DIR",
		Short: "Upload a project directory, replacing the current file list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			uploads, err := ingest.FromDir(args[0])
			if err != nil {
				return err
			}
			if len(uploads) == 0 {
				return fmt.Errorf("no files found in %s", args[0])
			}

			res, err := client.Upload(uploads)
			if err != nil {
				return err
			}

			headers := []string{"FILE", "STATUS"}
			rows := make([][]string, 0, len(res.Files)+len(res.Dropped))
			for _, f := range res.Files {
				rows = append(rows, []string{f.FileName, "uploaded"})
			}
			for _, d := range res.Dropped {
				rows = append(rows, []string{d.Path, "dropped: " + d.Error})
			}

			out.Print(headers, rows, res)
			out.Success(fmt.Sprintf("Uploaded %d files", len(res.Files)))
			return nil
		},
	}
}

// NewFilesCmd создаёт группу команд для работы с файлами.
func NewFilesCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Inspect and edit uploaded files",
	}

	cmd.AddCommand(
		newFilesListCmd(clientFn, outputFn),
		newFilesShowCmd(clientFn, outputFn),
		newFilesDiffCmd(clientFn, outputFn),
		newFilesSelectCmd(clientFn, outputFn),
		newFilesEditCmd(clientFn, outputFn),
		newFilesClearCmd(clientFn, outputFn),
	)

	return cmd
}

func newFilesListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List files",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := clientFn().ListFiles()
			if err != nil {
				return err
			}

			headers := []string{"FILE", "SELECTED", "LOADING", "CONVERTED", "ERROR"}
			rows := make([][]string, len(files))
			for i, f := range files {
				rows[i] = []string{
					f.FileName,
					mark(f.Selected),
					strconv.FormatBool(f.Loading),
					strconv.FormatBool(f.Converted),
					f.Error,
				}
			}

			outputFn().Print(headers, rows, files)
			return nil
		},
	}
}

func newFilesShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var showOld bool

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Show a file with its advice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := clientFn().GetFile(args[0])
			if err != nil {
				return err
			}

			code := rec.NewCode
			if showOld {
				code = rec.OldCode
			}
			outputFn().Text(formatRecord(rec, code), rec)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showOld, "old", false, "Show the original code instead of the converted one")
	return cmd
}

// formatRecord — текстовое представление файла для show.
func formatRecord(rec *FileRecord, code string) string {
	advice := noAdvice
	if rec.Advice != nil && *rec.Advice != "" {
		advice = *rec.Advice
	}

	text := fmt.Sprintf("File:    %s\nLoading: %t\n", rec.FileName, rec.Loading)
	if rec.Error != "" {
		text += "Error:   " + rec.Error + "\n"
	}
	text += "Advice:\n" + advice + "\n\n" + code
	return text
}

func newFilesDiffCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "diff FILE",
		Short: "Show a unified diff between original and converted code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			diff, err := clientFn().Diff(args[0])
			if err != nil {
				return err
			}
			outputFn().Text(diff.Diff, diff)
			return nil
		},
	}
}

func newFilesSelectCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "select FILE",
		Short: "Select a file for rethink",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := clientFn().Select(args[0])
			if err != nil {
				return err
			}

			out := outputFn()
			out.Print([]string{"SELECTED"}, [][]string{{rec.FileName}}, rec)
			return nil
		},
	}
}

func newFilesEditCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "edit FILE --from PATH",
		Short: "Replace the converted code of a file with local content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(source)
			if err != nil {
				return fmt.Errorf("read %s: %w", source, err)
			}

			rec, err := clientFn().EditFile(args[0], string(data))
			if err != nil {
				return err
			}

			out := outputFn()
			if out.jsonMode {
				out.JSON(rec)
			}
			out.Success(fmt.Sprintf("Updated %s", rec.FileName))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "from", "", "Local file with the new code (required)")
	cmd.MarkFlagRequired("from")
	return cmd
}

func newFilesClearCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all uploaded files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().ClearFiles(); err != nil {
				return err
			}
			outputFn().Success("Files cleared")
			return nil
		},
	}
}

func mark(v bool) string {
	if v {
		return "*"
	}
	return ""
}
