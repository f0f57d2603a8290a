// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardbridge-io/cardbridge/internal/card"
	"github.com/cardbridge-io/cardbridge/internal/cli"
)

// probeTimeout bounds the status probe so the command returns promptly
// even when the card service reports no state change.
const probeTimeout = 1 * time.Second

type readerInfo struct {
	Name        string `json:"name"`
	CardPresent bool   `json:"card_present"`
}

// readersCmd represents the readers command.
var readersCmd = &cobra.Command{
	Use:   "readers",
	Short: "List attached card readers",
	Long: `List the card readers known to the PC/SC service and whether a
card is currently seated in each.
`,
	Run: func(_ *cobra.Command, _ []string) {
		session, err := card.NewPCSCSession()
		if err != nil {
			cli.LogFatal(logger, "failed to attach to card service", err)
		}
		defer func() { _ = session.Close() }()

		names, err := session.ListReaders()
		if err != nil {
			cli.LogFatal(logger, "failed to list readers", err)
		}

		if len(names) == 0 {
			fmt.Println(cli.DimStyle.Render("No readers detected."))

			return
		}

		present := make(map[string]bool, len(names))
		statuses, err := session.WaitStatus(names, probeTimeout)
		if err != nil && !errors.Is(err, card.ErrWaitTimeout) {
			cli.LogFatal(logger, "failed to query reader status", err)
		}
		for _, status := range statuses {
			present[status.Reader] = status.Present
		}

		infos := make([]readerInfo, 0, len(names))
		for _, name := range names {
			infos = append(infos, readerInfo{
				Name:        name,
				CardPresent: present[name],
			})
		}

		if jsonOutput {
			data, err := json.MarshalIndent(infos, "", "  ")
			if err != nil {
				cli.LogFatal(logger, "failed to encode reader list", err)
			}
			fmt.Println(string(data))

			return
		}

		rows := make([][]string, 0, len(infos))
		for _, info := range infos {
			state := "empty"
			if info.CardPresent {
				state = "present"
			}
			rows = append(rows, []string{info.Name, state})
		}

		fmt.Println()
		cli.PrintKV("Readers", strconv.Itoa(len(infos)))
		cli.PrintCompactTable([]cli.Section{
			{
				Headers: []string{"NAME", "CARD"},
				Rows:    rows,
			},
		})
	},
}

func init() {
	rootCmd.AddCommand(readersCmd)
}
