/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package validate

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/nlnwa/gomarc"
	"github.com/spf13/cobra"
)

type conf struct {
	fileName string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a MARC file for framing irregularities",
		Long: `Check a MARC file for framing irregularities.

Every record is parsed with warnings enabled; non-fatal deviations from
the standard are listed per record. A structural error stops the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileName = args[0]
			return runE(c)
		},
	}

	return cmd
}

func runE(c *conf) error {
	mf, err := gomarc.NewMarcFileReader(c.fileName, 0,
		gomarc.WithSyntaxErrorPolicy(gomarc.ErrWarn),
		gomarc.WithSpecViolationPolicy(gomarc.ErrWarn))
	if err != nil {
		return err
	}
	defer mf.Close()

	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed)

	count := 0
	warnings := 0
	for {
		record, offset, validation, err := mf.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fail.Printf("%d: %v\n", offset, err)
			return fmt.Errorf("validation stopped after %d records", count)
		}
		count++

		if len(*validation) > 0 {
			warnings += len(*validation)
			warn.Printf("%d: %s\n", offset, record.ControlNumber())
			for _, e := range *validation {
				fmt.Printf("    %v\n", e)
			}
		}
	}

	if warnings == 0 {
		ok.Printf("OK: %d records\n", count)
	} else {
		warn.Printf("%d records, %d warnings\n", count, warnings)
	}
	return nil
}
