package pebble

import (
	"time"

	"github.com/cockroachdb/pebble/v2"
)

// Ensure pebbleLoggerAdapter implements pebble.Logger.
var _ pebble.Logger = (*pebbleLoggerAdapter)(nil)

type pebbleLoggerAdapter struct{}

func (pebbleLoggerAdapter) Infof(format string, args ...interface{}) {
	log.Infof("[pebble] "+format, args...)
}

func (pebbleLoggerAdapter) Errorf(format string, args ...interface{}) {
	log.Errorf("[pebble] "+format, args...)
}

func (pebbleLoggerAdapter) Fatalf(format string, args ...interface{}) {
	log.Criticalf("[pebble] "+format, args...)
}

// eventListener reports background errors, write stalls and slow disks, and
// the flushes and compactions that take at least minDuration.
func eventListener(minDuration time.Duration) *pebble.EventListener {
	return &pebble.EventListener{
		BackgroundError: func(err error) {
			log.Errorf("[pebble] background error: %v", err)
		},
		WriteStallBegin: func(info pebble.WriteStallBeginInfo) {
			log.Warnf("[pebble] write stall begin: %s", info.Reason)
		},
		WriteStallEnd: func() {
			log.Warnf("[pebble] write stall end")
		},
		CompactionEnd: func(info pebble.CompactionInfo) {
			if info.Err != nil {
				log.Errorf("[pebble] compaction failed  job=%d  reason=%s  dur=%s  err=%v",
					info.JobID, info.Reason, info.TotalDuration, info.Err)
				return
			}
			if info.TotalDuration >= minDuration {
				log.Infof("[pebble] compaction  job=%d  reason=%s  dur=%s",
					info.JobID, info.Reason, info.TotalDuration)
			}
		},
		FlushEnd: func(info pebble.FlushInfo) {
			if info.Err != nil {
				log.Errorf("[pebble] flush failed  job=%d  reason=%s  dur=%s  err=%v",
					info.JobID, info.Reason, info.TotalDuration, info.Err)
				return
			}
			if info.TotalDuration >= minDuration {
				log.Infof("[pebble] flush  job=%d  reason=%s  input=%d  bytes=%d  ingest=%t  dur=%s",
					info.JobID, info.Reason, info.Input, info.InputBytes, info.Ingest, info.TotalDuration)
			}
		},
		DiskSlow: func(info pebble.DiskSlowInfo) {
			log.Warnf("[pebble] disk slow  op=%s  path=%s  write=%d  dur=%s",
				info.OpType, info.Path, info.WriteSize, info.Duration)
		},
	}
}
