package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool
	Out   io.Writer
	Err   io.Writer
}

// AddOutputFlags registers --json and --quiet on cmd
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")
}

// NewFormatter builds a formatter from the command's output flags and writers
func NewFormatter(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quiet, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{
		JSON:  jsonOutput,
		Quiet: quiet,
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
	}
}

// Human reports whether neither JSON nor quiet output was requested
func (f *OutputFormatter) Human() bool {
	return !f.JSON && !f.Quiet
}

// Success outputs a successful result. Quiet mode prints only the ID when data has one.
func (f *OutputFormatter) Success(data any) error {
	if f.Quiet {
		if idGetter, ok := data.(interface{ GetID() string }); ok {
			_, err := fmt.Fprintln(f.Out, idGetter.GetID())
			return err
		}
		return nil
	}

	if f.JSON {
		return json.NewEncoder(f.Out).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	_, err := fmt.Fprintf(f.Out, "%+v\n", data)
	return err
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	return f.ErrorWithSuggestion(code, message, "")
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code string, message string, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(f.Out).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	fmt.Fprintf(f.Err, "Error: %s\n", message)
	if suggestion != "" {
		fmt.Fprintf(f.Err, "Suggestion: %s\n", suggestion)
	}
	return nil
}

// Fail prints err classified and returns the *ExitStatusError the command should return
func (f *OutputFormatter) Fail(err error, fallback string) error {
	c := Classify(err, fallback)
	if fmtErr := f.ErrorWithSuggestion(c.Code, c.Message, c.Suggestion); fmtErr != nil {
		return fmtErr
	}
	return &ExitStatusError{Code: c.Exit, Err: err}
}

// Usage prints a usage problem and returns an ExitUsage error
func (f *OutputFormatter) Usage(code, message, suggestion string) error {
	if fmtErr := f.ErrorWithSuggestion(code, message, suggestion); fmtErr != nil {
		return fmtErr
	}
	return &ExitStatusError{Code: ExitUsage, Err: fmt.Errorf("%s", message)}
}

// Result prints human in human mode, otherwise hands data to Success
func (f *OutputFormatter) Result(data any, human string) error {
	if f.Human() {
		_, err := fmt.Fprintln(f.Out, human)
		return err
	}
	return f.Success(data)
}
