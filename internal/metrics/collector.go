package metrics

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// SystemMetrics holds current system metrics snapshot
type SystemMetrics struct {
	CPUPercent        float64 // System-wide CPU usage (0-100%)
	ProcessCPUPercent float64 // This process CPU usage, can exceed 100% on multi-core
	ProcessRSS        uint64  // Resident set size of this process
	HeapAlloc         uint64  // Live Go heap, dominated by the element graph
	MemoryUsed        uint64
	MemoryTotal       uint64
	MemoryPercent     float64
	DiskReadBps       float64 // Bytes per second read across all disks
	Timestamp         time.Time
}

// Collector periodically collects and logs system metrics
type Collector struct {
	interval     time.Duration
	logger       *zap.Logger
	proc         *process.Process
	lastDiskRead uint64
	lastDiskTime time.Time
	mu           sync.RWMutex
	lastMetrics  *SystemMetrics
}

// NewCollector creates a new metrics collector
func NewCollector(interval time.Duration, logger *zap.Logger) *Collector {
	if interval < time.Second {
		interval = 30 * time.Second
	}

	// Get handle to current process for CPU and RSS tracking
	proc, _ := process.NewProcess(int32(os.Getpid()))

	return &Collector{
		interval: interval,
		logger:   logger,
		proc:     proc,
	}
}

// Start begins periodic metrics collection. Returns when context is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Collect first sample immediately (initializes disk baseline)
	c.collect()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Metrics collection stopped")
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// GetMetrics returns the last collected metrics
func (c *Collector) GetMetrics() *SystemMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastMetrics
}

// sample collects one snapshot without logging it
func (c *Collector) sample() *SystemMetrics {
	metrics := &SystemMetrics{
		Timestamp: time.Now(),
	}

	cpuPercent, err := cpu.Percent(0, false)
	if err == nil && len(cpuPercent) > 0 {
		metrics.CPUPercent = cpuPercent[0]
	}

	if c.proc != nil {
		if procCPU, err := c.proc.Percent(0); err == nil {
			metrics.ProcessCPUPercent = procCPU
		}
		if info, err := c.proc.MemoryInfo(); err == nil {
			metrics.ProcessRSS = info.RSS
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	metrics.HeapAlloc = ms.HeapAlloc

	vmem, err := mem.VirtualMemory()
	if err == nil {
		metrics.MemoryPercent = vmem.UsedPercent
		metrics.MemoryUsed = vmem.Used
		metrics.MemoryTotal = vmem.Total
	}

	metrics.DiskReadBps = c.diskReadRate()
	return metrics
}

// collect gathers current system metrics and logs them
func (c *Collector) collect() {
	metrics := c.sample()

	c.mu.Lock()
	c.lastMetrics = metrics
	c.mu.Unlock()

	c.logger.Info("System metrics",
		zap.Float64("sys_cpu", metrics.CPUPercent),
		zap.Float64("proc_cpu", metrics.ProcessCPUPercent),
		zap.String("rss", humanize.IBytes(metrics.ProcessRSS)),
		zap.String("heap", humanize.IBytes(metrics.HeapAlloc)),
		zap.Float64("mem_pct", metrics.MemoryPercent),
		zap.String("mem_used", humanize.IBytes(metrics.MemoryUsed)),
		zap.String("disk_r", humanize.IBytes(uint64(metrics.DiskReadBps))+"/s"),
	)
}

// diskReadRate returns bytes read per second since the previous call
func (c *Collector) diskReadRate() float64 {
	counters, err := disk.IOCounters()
	if err != nil {
		return 0
	}

	var total uint64
	for _, counter := range counters {
		total += counter.ReadBytes
	}
	now := time.Now()

	// First call - initialize baseline
	if c.lastDiskTime.IsZero() {
		c.lastDiskRead, c.lastDiskTime = total, now
		return 0
	}

	elapsed := now.Sub(c.lastDiskTime).Seconds()
	if elapsed < 0.1 {
		return 0
	}

	var delta uint64
	// Handle counter wrapping
	if total >= c.lastDiskRead {
		delta = total - c.lastDiskRead
	}
	c.lastDiskRead, c.lastDiskTime = total, now
	return float64(delta) / elapsed
}
