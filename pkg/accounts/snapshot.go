package accounts

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/fgrust/reward-pool/pkg/types"
)

// Snapshot format, zstd-compressed:
//
//	magic       8 bytes ("RPOOLSNP")
//	version     u32
//	count       u64
//	records     count times: pubkey (32 bytes) | record_len u32 | record
//
// Each record is the storage encoding from SerializeAccount.

const snapshotVersion = 1

var snapshotMagic = [8]byte{'R', 'P', 'O', 'O', 'L', 'S', 'N', 'P'}

var (
	// ErrInvalidSnapshot is returned when a snapshot stream is malformed.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrSnapshotVersion is returned for an unsupported snapshot version.
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
)

// ExportSnapshot writes every account in the store to w as a compressed
// snapshot stream.
func ExportSnapshot(db AccountsDB, w io.Writer) error {
	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}

	header := make([]byte, 8+4+8)
	copy(header, snapshotMagic[:])
	binary.LittleEndian.PutUint32(header[8:], snapshotVersion)
	binary.LittleEndian.PutUint64(header[12:], db.GetAccountsCount())
	if _, err := encoder.Write(header); err != nil {
		encoder.Close()
		return fmt.Errorf("write snapshot header: %w", err)
	}

	err = db.ForEach(func(pubkey types.Pubkey, account *types.Account) error {
		record, err := SerializeAccount(account)
		if err != nil {
			return err
		}
		entry := make([]byte, 32+4+len(record))
		copy(entry, pubkey[:])
		binary.LittleEndian.PutUint32(entry[32:], uint32(len(record)))
		copy(entry[36:], record)
		_, err = encoder.Write(entry)
		return err
	})
	if err != nil {
		encoder.Close()
		return fmt.Errorf("write snapshot records: %w", err)
	}

	return encoder.Close()
}

// ImportSnapshot reads a compressed snapshot stream from r and stores
// every account it contains. Existing accounts with the same pubkey are
// overwritten.
func ImportSnapshot(db AccountsDB, r io.Reader) (uint64, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	header := make([]byte, 8+4+8)
	if _, err := io.ReadFull(decoder, header); err != nil {
		return 0, fmt.Errorf("%w: short header: %v", ErrInvalidSnapshot, err)
	}
	if !bytes.Equal(header[:8], snapshotMagic[:]) {
		return 0, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if version := binary.LittleEndian.Uint32(header[8:]); version != snapshotVersion {
		return 0, fmt.Errorf("%w: %d", ErrSnapshotVersion, version)
	}
	count := binary.LittleEndian.Uint64(header[12:])

	entryHeader := make([]byte, 32+4)
	var imported uint64
	for imported < count {
		if _, err := io.ReadFull(decoder, entryHeader); err != nil {
			return imported, fmt.Errorf("%w: truncated at record %d: %v", ErrInvalidSnapshot, imported, err)
		}

		var pubkey types.Pubkey
		copy(pubkey[:], entryHeader[:32])
		recordLen := binary.LittleEndian.Uint32(entryHeader[32:])

		record := make([]byte, recordLen)
		if _, err := io.ReadFull(decoder, record); err != nil {
			return imported, fmt.Errorf("%w: truncated record %d: %v", ErrInvalidSnapshot, imported, err)
		}

		account, err := DeserializeAccount(record)
		if err != nil {
			return imported, fmt.Errorf("record %d: %w", imported, err)
		}
		if err := db.SetAccount(pubkey, account); err != nil {
			return imported, fmt.Errorf("store %s: %w", pubkey, err)
		}
		imported++
	}

	return imported, nil
}

// ExportSnapshotFile exports the store to a snapshot file at path.
func ExportSnapshotFile(db AccountsDB, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if err := ExportSnapshot(db, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ImportSnapshotFile imports accounts from a snapshot file at path.
func ImportSnapshotFile(db AccountsDB, path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open snapshot file: %w", err)
	}
	defer file.Close()
	return ImportSnapshot(db, file)
}
