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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardbridge-io/cardbridge/internal/cli"
	"github.com/cardbridge-io/cardbridge/internal/fieldcrypt"
)

// keygenCmd represents the keygen command.
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a field encryption key",
	Long: `Generate a random AES-256 key for field encryption.

Provide the key to the daemon through the ENCRYPTION_KEY environment
variable or the server.security.encryption.key config setting.
`,
	Run: func(_ *cobra.Command, _ []string) {
		key, err := fieldcrypt.GenerateKey()
		if err != nil {
			cli.LogFatal(logger, "failed to generate encryption key", err)
		}

		logger.Info(
			"generated encryption key",
			slog.String("key", key),
		)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
