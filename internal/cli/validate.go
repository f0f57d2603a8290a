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

package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// hostInfoFn is swapped by tests to avoid probing the real host.
var hostInfoFn = host.Info

// testedReleases maps distributions to the releases the PC/SC stack is
// routinely exercised against. Other platforms run fine, they just have
// not been through the reader compatibility matrix.
var testedReleases = map[string][]string{
	"ubuntu": {"20.04", "22.04", "24.04"},
	"debian": {"12"},
}

// IsTestedPlatform reports whether the distribution and version pair is
// part of the reader compatibility matrix.
func IsTestedPlatform(
	distro string,
	version string,
) bool {
	releases, ok := testedReleases[strings.ToLower(distro)]
	if !ok {
		return false
	}

	for _, r := range releases {
		if r == version {
			return true
		}
	}

	return false
}

// ValidateDistribution warns when the host is outside the reader
// compatibility matrix. Set IGNORE_PLATFORM_CHECK to silence the probe.
func ValidateDistribution(
	logger *slog.Logger,
) {
	if os.Getenv("IGNORE_PLATFORM_CHECK") != "" {
		logger.Debug("skipping platform validation")

		return
	}

	info, err := hostInfoFn()
	if err != nil {
		logger.Warn(
			"cannot determine host platform",
			slog.String("error", err.Error()),
		)

		return
	}

	if !IsTestedPlatform(info.Platform, info.PlatformVersion) {
		logger.Warn(
			"platform outside the reader compatibility matrix",
			slog.String("platform", info.Platform),
			slog.String("version", info.PlatformVersion),
		)
	}
}
