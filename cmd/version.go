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
	"fmt"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"

	"github.com/cardbridge-io/cardbridge/internal/cli"
)

// Build metadata, overridden at link time by the release pipeline.
var (
	version = "0.1.0"
	commit  = ""
	date    = ""
	builtBy = ""
)

const asciiName = `
┌─┐┌─┐┬─┐┌┬┐┌┐ ┬─┐┬┌┬┐┌─┐┌─┐
│  ├─┤├┬┘ ││├┴┐├┬┘│ │││ ┬├┤
└─┘┴ ┴┴└──┴┘└─┘┴└─┴─┴┘└─┘└─┘
`

// buildVersion assembles the build information reported by the version
// command.
func buildVersion() goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails(
			"cardbridge",
			"Thai national ID card reader daemon.",
			"https://github.com/cardbridge-io/cardbridge",
		),
		goversion.WithASCIIName(asciiName),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if date != "" {
				i.BuildDate = date
			}
			if version != "" {
				i.GitVersion = version
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Long: `Print the version, commit, and build details of this binary.
`,
	Run: func(_ *cobra.Command, _ []string) {
		info := buildVersion()

		if jsonOutput {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				cli.LogFatal(logger, "failed to encode build information", err)
			}
			fmt.Println(string(data))

			return
		}

		fmt.Println(info.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
