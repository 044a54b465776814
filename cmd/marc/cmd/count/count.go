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
package count

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/nlnwa/gomarc"
	"github.com/spf13/cobra"
)

type conf struct {
	byTag    bool
	fileName string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "count <file>",
		Short: "Count the records and fields of a MARC file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileName = args[0]
			return runE(c)
		},
	}

	cmd.Flags().BoolVarP(&c.byTag, "by-tag", "t", false, "print a per tag field tally")

	return cmd
}

func runE(c *conf) error {
	file, err := os.Open(c.fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := gomarc.NewMarcStreamReader(file)

	records := 0
	fields := 0
	tags := map[string]int{}
	for reader.HasNext() {
		record, _, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", records, err)
		}
		records++
		for _, f := range record.GetFields() {
			fields++
			tags[f.Tag()]++
		}
	}

	fmt.Printf("Records: %d\nFields:  %d\n", records, fields)
	if c.byTag {
		keys := make([]string, 0, len(tags))
		for tag := range tags {
			keys = append(keys, tag)
		}
		sort.Strings(keys)
		for _, tag := range keys {
			fmt.Printf("  %s %d\n", tag, tags[tag])
		}
	}
	return nil
}
