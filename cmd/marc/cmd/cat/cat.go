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
package cat

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nlnwa/gomarc"
	"github.com/spf13/cobra"
)

type conf struct {
	offset      int64
	recordCount int
	encoding    string
	override    bool
	fileName    string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "cat <file>",
		Short: "Print the records of a MARC file",
		Long: `Print the records of a MARC file in a line oriented form, one field
per line with subfields rendered as $<code><data>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileName = args[0]
			if c.offset >= 0 && c.recordCount == 0 {
				c.recordCount = 1
			}
			if c.offset < 0 {
				c.offset = 0
			}
			return runE(c)
		},
	}

	cmd.Flags().Int64VarP(&c.offset, "offset", "o", -1, "start reading at byte offset")
	cmd.Flags().IntVarP(&c.recordCount, "record-count", "c", 0, "the maximum number of records to show")
	cmd.Flags().StringVarP(&c.encoding, "encoding", "e", "", "decode field data with this charset instead of the one inferred from the leader")
	cmd.Flags().BoolVar(&c.override, "override", false, "use the explicit charset even when the leader declares Unicode")

	return cmd
}

func runE(c *conf) error {
	var opts []gomarc.MarcRecordOption
	if c.encoding != "" {
		opts = append(opts, gomarc.WithEncoding(c.encoding))
	}
	if c.override {
		opts = append(opts, gomarc.WithOverrideCodingScheme(true))
	}

	mf, err := gomarc.NewMarcFileReader(c.fileName, c.offset, opts...)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer mf.Close()

	count := 0
	for {
		record, currentOffset, _, err := mf.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v, rec num: %d, Offset %d\n", err, count, currentOffset)
			break
		}
		count++

		fmt.Printf("%d:\n%v\n", currentOffset, record)

		if c.recordCount > 0 && count >= c.recordCount {
			break
		}
	}
	fmt.Fprintln(os.Stderr, "Count: ", count)
	return nil
}
