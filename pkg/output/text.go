// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"fmt"
	"io"
)

// TextItem is a value that knows how to render itself for a terminal.
type TextItem interface {
	// ToString renders the item. Every line after the first starts with currentIndentation.
	ToString(currentIndentation string) string
}

// TextFormatter renders TextItem values and plain strings as human readable text.
type TextFormatter struct {
}

func (f *TextFormatter) Kind() Format {
	return TextFormat
}

func (f *TextFormatter) Format(obj interface{}, writer io.Writer, _ interface{}) error {
	var content string
	switch v := obj.(type) {
	case TextItem:
		content = v.ToString("")
	case string:
		content = v
	case fmt.Stringer:
		content = v.String()
	default:
		return fmt.Errorf("TextFormatter can not format objects of type %T", obj)
	}

	if _, err := fmt.Fprintln(writer, content); err != nil {
		return fmt.Errorf("could not write content: %w", err)
	}

	return nil
}

var _ Formatter = (*TextFormatter)(nil)

type NoneFormatter struct {
}

func (f *NoneFormatter) Kind() Format {
	return NoneFormat
}

func (f *NoneFormatter) Format(obj interface{}, writer io.Writer, opts interface{}) error {
	return nil
}

var _ Formatter = (*NoneFormatter)(nil)
