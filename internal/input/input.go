package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/jsonfixer/internal/errors"
)

// ReadFile returns the contents of filePath as text. An empty file is not an
// error: it corrects to an empty object like any other value-less input.
func ReadFile(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return "", errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return "", errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.IsDir() {
		return "", errors.NewInputError(
			fmt.Sprintf("'%s' is a directory", filePath),
			errors.ErrInvalidFilePath,
		)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewInputError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	return string(data), nil
}

// ReadAll reads everything from r, typically piped stdin.
func ReadAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	return string(data), nil
}

// ReadInteractive prompts on prompt and reads lines from r until EOF (Ctrl+D).
func ReadInteractive(r io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprintln(prompt, "jsonfixer Interactive Mode")
	fmt.Fprintln(prompt, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(r)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	if jsonBuilder.Len() == 0 {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(prompt, "\nCorrecting JSON...")
	return jsonBuilder.String(), nil
}
