package hwdecpipe

import (
	"github.com/go-ng/xatomic"
	"go.uber.org/atomic"
)

// Statistics is the set of monotonic counters the controller maintains.
// Counters are written from the decode worker and may be read from any
// goroutine.
type Statistics struct {
	FramesSubmitted  atomic.Uint64
	FramesDecoded    atomic.Uint64
	BytesConsumed    atomic.Uint64
	PicturesSent     atomic.Uint64
	FlushesCompleted atomic.Uint64
	ResetsCompleted  atomic.Uint64

	lastSnapshot *StatisticsSnapshot
}

// StatisticsSnapshot is a plain-value copy of Statistics.
type StatisticsSnapshot struct {
	FramesSubmitted  uint64
	FramesDecoded    uint64
	BytesConsumed    uint64
	PicturesSent     uint64
	FlushesCompleted uint64
	ResetsCompleted  uint64
}

// Convert takes a consistent-enough snapshot of the counters. The previous
// snapshot stays reachable through GetLastSnapshot for delta computations.
func (stats *Statistics) Convert() StatisticsSnapshot {
	snapshot := StatisticsSnapshot{
		FramesSubmitted:  stats.FramesSubmitted.Load(),
		FramesDecoded:    stats.FramesDecoded.Load(),
		BytesConsumed:    stats.BytesConsumed.Load(),
		PicturesSent:     stats.PicturesSent.Load(),
		FlushesCompleted: stats.FlushesCompleted.Load(),
		ResetsCompleted:  stats.ResetsCompleted.Load(),
	}
	xatomic.StorePointer(&stats.lastSnapshot, &snapshot)
	return snapshot
}

// GetLastSnapshot returns the snapshot taken by the previous Convert call,
// or nil.
func (stats *Statistics) GetLastSnapshot() *StatisticsSnapshot {
	return xatomic.LoadPointer(&stats.lastSnapshot)
}
