package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogRecordType distinguishes a page writeback record from a checkpoint
// marker. There is no transaction manager in this package, so the
// record carries no txn id or undo chain; only what a buffer pool
// eviction or explicit flush needs to record.
type LogRecordType uint8

const (
	LogRecordPageWrite LogRecordType = iota
	LogRecordCheckpoint
)

// LogRecord is a single WAL entry: a page's contents were written back
// to disk (LogRecordPageWrite, with Data holding the written bytes) or
// a checkpoint was taken (LogRecordCheckpoint, PageID/Data unused).
type LogRecord struct {
	LSN    uint64 // assigned by Append
	Type   LogRecordType
	PageID PageID
	Data   []byte
}

// WAL is an append-only, sequentially numbered log of page writebacks.
// It gives the buffer pool manager a redo trail for dirty evictions
// without implementing replay-based crash recovery.
type WAL struct {
	file       *os.File
	mu         sync.Mutex
	currentLSN uint64
}

// recordHeaderSize is LSN(8) + Type(1) + PageID(4) + DataLen(4).
const recordHeaderSize = 17

// NewWAL opens (or creates) the log file at path, resuming LSN
// assignment from the current file size so a reopened log never
// reuses an LSN it already handed out.
func NewWAL(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAL file: %w", err)
	}

	pos, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to seek WAL file: %w", err)
	}

	return &WAL{
		file:       file,
		currentLSN: uint64(pos),
	}, nil
}

// Append assigns record the next LSN, writes it, and returns that LSN.
func (w *WAL) Append(record *LogRecord) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.currentLSN++
	record.LSN = w.currentLSN

	data := w.serializeRecord(record)
	if _, err := w.file.Write(data); err != nil {
		return 0, fmt.Errorf("failed to write WAL record: %w", err)
	}

	return record.LSN, nil
}

// serializeRecord converts a log record to bytes.
// Format: [8-byte LSN][1-byte Type][4-byte PageID][4-byte DataLen][Data]
func (w *WAL) serializeRecord(record *LogRecord) []byte {
	dataLen := len(record.Data)
	buf := make([]byte, recordHeaderSize+dataLen)

	binary.LittleEndian.PutUint64(buf[0:8], record.LSN)
	buf[8] = byte(record.Type)
	binary.LittleEndian.PutUint32(buf[9:13], uint32(record.PageID))
	binary.LittleEndian.PutUint32(buf[13:17], uint32(dataLen))
	copy(buf[recordHeaderSize:], record.Data)

	return buf
}

// deserializeRecord converts bytes back to a log record.
func (w *WAL) deserializeRecord(data []byte) (*LogRecord, error) {
	if len(data) < recordHeaderSize {
		return nil, fmt.Errorf("invalid WAL record: too short")
	}

	record := &LogRecord{
		LSN:    binary.LittleEndian.Uint64(data[0:8]),
		Type:   LogRecordType(data[8]),
		PageID: PageID(binary.LittleEndian.Uint32(data[9:13])),
	}

	dataLen := binary.LittleEndian.Uint32(data[13:17])
	if len(data) < recordHeaderSize+int(dataLen) {
		return nil, fmt.Errorf("invalid WAL record: data truncated")
	}

	record.Data = make([]byte, dataLen)
	copy(record.Data, data[recordHeaderSize:recordHeaderSize+int(dataLen)])

	return record, nil
}

// Flush ensures all written records reach disk.
func (w *WAL) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.file.Sync()
}

// Replay reads every record in the log, in append order.
func (w *WAL) Replay() ([]*LogRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek WAL: %w", err)
	}

	records := make([]*LogRecord, 0)
	header := make([]byte, recordHeaderSize)

	for {
		n, err := w.file.Read(header)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read WAL record header: %w", err)
		}
		if n < recordHeaderSize {
			break // incomplete record at end
		}

		dataLen := binary.LittleEndian.Uint32(header[13:17])
		fullRecord := make([]byte, recordHeaderSize+int(dataLen))
		copy(fullRecord[:recordHeaderSize], header)

		if dataLen > 0 {
			if _, err := io.ReadFull(w.file, fullRecord[recordHeaderSize:]); err != nil {
				return nil, fmt.Errorf("failed to read WAL record data: %w", err)
			}
		}

		record, err := w.deserializeRecord(fullRecord)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize WAL record: %w", err)
		}
		records = append(records, record)
	}

	w.file.Seek(0, io.SeekEnd)
	return records, nil
}

// Checkpoint appends a checkpoint marker and forces it to disk.
func (w *WAL) Checkpoint() error {
	if _, err := w.Append(&LogRecord{Type: LogRecordCheckpoint}); err != nil {
		return err
	}
	return w.Flush()
}

// Truncate would discard records before beforeLSN once a checkpoint
// guarantees they're no longer needed for redo. Log archival and
// compaction are out of scope here, so this is a safe no-op.
func (w *WAL) Truncate(beforeLSN uint64) error {
	return nil
}

// Close flushes and closes the log file.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Sync(); err != nil {
		return err
	}
	return w.file.Close()
}
