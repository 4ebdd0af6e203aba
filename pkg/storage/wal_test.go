package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWAL(t *testing.T) {
	dir := "./test_wal_new"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	if wal == nil {
		t.Fatal("Expected non-nil WAL")
	}
	if wal.currentLSN != 0 {
		t.Errorf("Expected currentLSN 0, got %d", wal.currentLSN)
	}
}

func TestWALAppend(t *testing.T) {
	dir := "./test_wal_append"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	record := &LogRecord{
		Type:   LogRecordPageWrite,
		PageID: 5,
		Data:   []byte("test data"),
	}

	lsn, err := wal.Append(record)
	if err != nil {
		t.Fatalf("Failed to append record: %v", err)
	}

	if lsn == 0 {
		t.Error("Expected non-zero LSN")
	}
	if record.LSN != lsn {
		t.Errorf("Expected record LSN %d, got %d", lsn, record.LSN)
	}
}

func TestWALMultipleAppends(t *testing.T) {
	dir := "./test_wal_multiple"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	lsns := make([]uint64, 0)
	for i := 0; i < 5; i++ {
		record := &LogRecord{
			Type:   LogRecordPageWrite,
			PageID: PageID(i),
			Data:   []byte("test"),
		}

		lsn, err := wal.Append(record)
		if err != nil {
			t.Fatalf("Failed to append record %d: %v", i, err)
		}
		lsns = append(lsns, lsn)
	}

	for i := 1; i < len(lsns); i++ {
		if lsns[i] <= lsns[i-1] {
			t.Errorf("Expected LSN %d > %d", lsns[i], lsns[i-1])
		}
	}
}

func TestWALFlush(t *testing.T) {
	dir := "./test_wal_flush"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	record := &LogRecord{
		Type:   LogRecordPageWrite,
		PageID: 3,
		Data:   []byte("flush test"),
	}
	_, err = wal.Append(record)
	if err != nil {
		t.Fatalf("Failed to append record: %v", err)
	}

	if err := wal.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}
}

func TestWALReplay(t *testing.T) {
	dir := "./test_wal_replay"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")

	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}

	records := []*LogRecord{
		{Type: LogRecordPageWrite, PageID: 0, Data: []byte("first write")},
		{Type: LogRecordPageWrite, PageID: 1, Data: []byte("second write")},
		{Type: LogRecordCheckpoint, PageID: 0, Data: nil},
		{Type: LogRecordPageWrite, PageID: 2, Data: []byte("third write")},
	}

	for _, record := range records {
		if _, err := wal.Append(record); err != nil {
			t.Fatalf("Failed to append record: %v", err)
		}
	}

	wal.Flush()
	wal.Close()

	wal2, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to reopen WAL: %v", err)
	}
	defer wal2.Close()

	replayed, err := wal2.Replay()
	if err != nil {
		t.Fatalf("Failed to replay WAL: %v", err)
	}

	if len(replayed) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(replayed))
	}

	for i, record := range replayed {
		if record.Type != records[i].Type {
			t.Errorf("Record %d: expected type %d, got %d", i, records[i].Type, record.Type)
		}
		if record.PageID != records[i].PageID {
			t.Errorf("Record %d: expected PageID %d, got %d", i, records[i].PageID, record.PageID)
		}
		if string(record.Data) != string(records[i].Data) {
			t.Errorf("Record %d: expected data %s, got %s", i, records[i].Data, record.Data)
		}
	}
}

func TestWALReplayEmpty(t *testing.T) {
	dir := "./test_wal_replay_empty"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	records, err := wal.Replay()
	if err != nil {
		t.Fatalf("Failed to replay empty WAL: %v", err)
	}

	if len(records) != 0 {
		t.Errorf("Expected 0 records, got %d", len(records))
	}
}

func TestWALCheckpoint(t *testing.T) {
	dir := "./test_wal_checkpoint"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	record := &LogRecord{
		Type:   LogRecordPageWrite,
		PageID: 0,
		Data:   []byte("before checkpoint"),
	}
	if _, err := wal.Append(record); err != nil {
		t.Fatalf("Failed to append record: %v", err)
	}

	if err := wal.Checkpoint(); err != nil {
		t.Fatalf("Failed to checkpoint: %v", err)
	}

	record2 := &LogRecord{
		Type:   LogRecordPageWrite,
		PageID: 1,
		Data:   []byte("after checkpoint"),
	}
	if _, err := wal.Append(record2); err != nil {
		t.Fatalf("Failed to append record after checkpoint: %v", err)
	}
}

func TestWALTruncate(t *testing.T) {
	dir := "./test_wal_truncate"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	lsn1, _ := wal.Append(&LogRecord{Type: LogRecordPageWrite, Data: []byte("old")})
	lsn2, _ := wal.Append(&LogRecord{Type: LogRecordPageWrite, Data: []byte("new")})

	if err := wal.Truncate(lsn1); err != nil {
		t.Fatalf("Failed to truncate: %v", err)
	}
	if err := wal.Truncate(lsn2); err != nil {
		t.Fatalf("Failed to truncate at lsn2: %v", err)
	}
	if err := wal.Truncate(0); err != nil {
		t.Fatalf("Failed to truncate at 0: %v", err)
	}
}

func TestWALClose(t *testing.T) {
	dir := "./test_wal_close"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}

	record := &LogRecord{Type: LogRecordPageWrite, PageID: 0, Data: []byte("test")}
	if _, err := wal.Append(record); err != nil {
		t.Fatalf("Failed to append record: %v", err)
	}

	if err := wal.Close(); err != nil {
		t.Fatalf("Failed to close WAL: %v", err)
	}

	if err := wal.Close(); err == nil {
		t.Error("Expected error on second close")
	}
}

func TestWALSerializeDeserialize(t *testing.T) {
	dir := "./test_wal_serde"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	original := &LogRecord{
		LSN:    100,
		Type:   LogRecordPageWrite,
		PageID: 7,
		Data:   []byte("serialization test data"),
	}

	data := wal.serializeRecord(original)

	deserialized, err := wal.deserializeRecord(data)
	if err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}

	if deserialized.LSN != original.LSN {
		t.Errorf("LSN mismatch: expected %d, got %d", original.LSN, deserialized.LSN)
	}
	if deserialized.Type != original.Type {
		t.Errorf("Type mismatch: expected %d, got %d", original.Type, deserialized.Type)
	}
	if deserialized.PageID != original.PageID {
		t.Errorf("PageID mismatch: expected %d, got %d", original.PageID, deserialized.PageID)
	}
	if string(deserialized.Data) != string(original.Data) {
		t.Errorf("Data mismatch: expected %s, got %s", original.Data, deserialized.Data)
	}
}

func TestWALDeserializeErrors(t *testing.T) {
	dir := "./test_wal_deserialize_errors"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	shortData := make([]byte, 10)
	if _, err := wal.deserializeRecord(shortData); err == nil {
		t.Error("Expected error with too short data")
	}

	truncatedData := make([]byte, recordHeaderSize)
	truncatedData[13] = 100 // claim 100 bytes of data that aren't there
	if _, err := wal.deserializeRecord(truncatedData); err == nil {
		t.Error("Expected error with truncated data")
	}
}

func TestWALRecordWithNoData(t *testing.T) {
	dir := "./test_wal_no_data"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	record := &LogRecord{
		Type:   LogRecordCheckpoint,
		PageID: 0,
		Data:   nil,
	}

	lsn, err := wal.Append(record)
	if err != nil {
		t.Fatalf("Failed to append record with nil data: %v", err)
	}
	if lsn == 0 {
		t.Error("Expected non-zero LSN")
	}

	records, err := wal.Replay()
	if err != nil {
		t.Fatalf("Failed to replay: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if len(records[0].Data) != 0 {
		t.Errorf("Expected empty data, got %d bytes", len(records[0].Data))
	}
}

func TestWALRecordTypes(t *testing.T) {
	dir := "./test_wal_record_types"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "test.wal")
	wal, err := NewWAL(path)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}
	defer wal.Close()

	recordTypes := []LogRecordType{LogRecordPageWrite, LogRecordCheckpoint}

	for _, recordType := range recordTypes {
		record := &LogRecord{
			Type:   recordType,
			PageID: 0,
			Data:   []byte("test"),
		}

		if _, err := wal.Append(record); err != nil {
			t.Fatalf("Failed to append %v record: %v", recordType, err)
		}
	}

	records, err := wal.Replay()
	if err != nil {
		t.Fatalf("Failed to replay: %v", err)
	}

	if len(records) != len(recordTypes) {
		t.Errorf("Expected %d records, got %d", len(recordTypes), len(records))
	}

	for i, record := range records {
		if record.Type != recordTypes[i] {
			t.Errorf("Record %d: expected type %v, got %v", i, recordTypes[i], record.Type)
		}
	}
}

func TestNewWALWithInvalidPath(t *testing.T) {
	_, err := NewWAL("/non/existent/directory/wal.log")
	if err == nil {
		t.Error("Expected error when creating WAL with invalid path")
	}
}

func TestWALFlushError(t *testing.T) {
	walPath := t.TempDir() + "/test.wal"
	wal, err := NewWAL(walPath)
	if err != nil {
		t.Fatalf("Failed to create WAL: %v", err)
	}

	record := &LogRecord{
		Type:   LogRecordPageWrite,
		PageID: 1,
		Data:   []byte("test data"),
	}
	if _, err := wal.Append(record); err != nil {
		t.Fatalf("Failed to append record: %v", err)
	}

	wal.file.Close()

	if err := wal.Flush(); err == nil {
		t.Error("Expected error when flushing closed WAL")
	}
}
