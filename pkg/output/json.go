// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JsonFormatter writes indented JSON followed by a newline.
//
// HTML escaping is off so that version constraints such as ">=18" and evidence literals such as "a && b" print as
// written.
type JsonFormatter struct {
}

func (f *JsonFormatter) Kind() Format {
	return JsonFormat
}

func (f *JsonFormatter) Format(obj interface{}, writer io.Writer, _ interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(obj); err != nil {
		return fmt.Errorf("writing json output: %w", err)
	}

	return nil
}

var _ Formatter = (*JsonFormatter)(nil)
