package storage

// LogManager is the narrow write-ahead-log contract the buffer pool
// manager needs: a redo record of a page's contents being written back
// to disk, returning the log sequence number assigned to that record.
// Full recovery (replay-driven restart, checkpointing strategy) lives
// outside this package.
type LogManager interface {
	AppendPageWrite(pageID PageID, data []byte) (lsn uint64, err error)
}

// WALLogManager adapts a WAL into a LogManager, so the buffer pool has
// a real, narrow caller into the write-ahead log instead of writing
// pages back to disk with no log trail at all.
type WALLogManager struct {
	wal *WAL
}

// NewWALLogManager wraps an existing WAL for use as a buffer pool's
// LogManager.
func NewWALLogManager(wal *WAL) *WALLogManager {
	return &WALLogManager{wal: wal}
}

// AppendPageWrite records pageID's flushed bytes as a redo entry.
func (m *WALLogManager) AppendPageWrite(pageID PageID, data []byte) (uint64, error) {
	return m.wal.Append(&LogRecord{
		Type:   LogRecordPageWrite,
		PageID: pageID,
		Data:   data,
	})
}
