// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"fmt"
	"io"
)

type Format string

const (
	JsonFormat Format = "json"
	TextFormat Format = "text"
	NoneFormat Format = "none"
)

// SupportedFormats lists the values accepted by NewFormatter, in help order.
var SupportedFormats = []Format{TextFormat, JsonFormat, NoneFormat}

type Formatter interface {
	Kind() Format
	Format(obj interface{}, writer io.Writer, opts interface{}) error
}

func NewFormatter(format string) (Formatter, error) {
	switch format {
	case string(JsonFormat):
		return &JsonFormatter{}, nil
	case string(TextFormat):
		return &TextFormatter{}, nil
	case string(NoneFormat):
		return &NoneFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %v", format)
	}
}
