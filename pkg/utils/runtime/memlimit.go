// Package runtime tunes the Go runtime for containerised deployments.
package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
)

// DefaultReserveRatio is the share of the cgroup limit given to the Go heap
const DefaultReserveRatio = 0.8

// unlimited is the threshold above which a cgroup limit means "no limit"
const unlimited = 1 << 60

// cgroupRoot is where the cgroup filesystem is mounted
var cgroupRoot = "/sys/fs/cgroup"

// ApplyCgroupMemoryLimit sets the soft memory limit to reserveRatio of the
// container's memory limit. An explicit GOMEMLIMIT always wins; ratios outside
// (0, 1) fall back to DefaultReserveRatio.
func ApplyCgroupMemoryLimit(reserveRatio float64) (applied bool, limitBytes uint64, err error) {
	if os.Getenv("GOMEMLIMIT") != "" {
		return false, 0, nil
	}
	if reserveRatio <= 0 || reserveRatio >= 1 {
		reserveRatio = DefaultReserveRatio
	}

	limit, ok, err := CgroupMemoryLimit()
	if err != nil || !ok {
		return false, 0, err
	}
	target := int64(float64(limit) * reserveRatio)
	if target <= 0 {
		return false, limit, nil
	}
	debug.SetMemoryLimit(target)
	return true, limit, nil
}

// CgroupMemoryLimit reads the cgroup v2 limit, then the v1 one; ok is false
// when neither is set
func CgroupMemoryLimit() (limit uint64, ok bool, err error) {
	for _, name := range []string{"memory.max", filepath.Join("memory", "memory.limit_in_bytes")} {
		b, readErr := os.ReadFile(filepath.Join(cgroupRoot, name))
		if readErr != nil {
			continue
		}
		s := strings.TrimSpace(string(b))
		if s == "" || s == "max" {
			return 0, false, nil
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("parse %s: %w", name, err)
		}
		if v > unlimited {
			return 0, false, nil
		}
		return v, true, nil
	}
	return 0, false, nil
}
