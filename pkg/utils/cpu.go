package utils

import "github.com/shirou/gopsutil/cpu"

// CheckCPUUsage samples current total CPU load and reports whether a new
// batch may start under the given ceiling, along with the sampled percentage.
// A sampling error counts as over the ceiling.
func CheckCPUUsage(maxCPUUsage float64) (bool, float64) {
	usage, err := cpu.Percent(0, false)
	if err != nil {
		return false, 0
	}
	return usage[0] <= maxCPUUsage, usage[0]
}
