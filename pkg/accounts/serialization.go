package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fgrust/reward-pool/pkg/types"
)

// Account record layout (little-endian):
//
//	lamports    u64
//	data_len    u32
//	data        data_len bytes
//	owner       32 bytes
//	executable  1 byte
//	rent_epoch  u64

const (
	recordHeaderSize = 8 + 4
	recordFooterSize = 32 + 1 + 8
	recordMinSize    = recordHeaderSize + recordFooterSize
)

// ErrInvalidRecord is returned when a stored account record is malformed.
var ErrInvalidRecord = errors.New("invalid account record")

// SerializeAccount encodes an account into its storage record.
func SerializeAccount(account *types.Account) ([]byte, error) {
	if account == nil {
		return nil, errors.New("cannot serialize nil account")
	}

	dataLen := len(account.Data)
	buf := make([]byte, recordMinSize+dataLen)

	offset := 0
	binary.LittleEndian.PutUint64(buf[offset:], uint64(account.Lamports))
	offset += 8
	binary.LittleEndian.PutUint32(buf[offset:], uint32(dataLen))
	offset += 4
	copy(buf[offset:], account.Data)
	offset += dataLen
	copy(buf[offset:], account.Owner[:])
	offset += 32
	if account.Executable {
		buf[offset] = 1
	}
	offset++
	binary.LittleEndian.PutUint64(buf[offset:], uint64(account.RentEpoch))

	return buf, nil
}

// DeserializeAccount decodes a storage record back into an account.
func DeserializeAccount(data []byte) (*types.Account, error) {
	if len(data) < recordMinSize {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d",
			ErrInvalidRecord, recordMinSize, len(data))
	}

	offset := 0
	lamports := types.Lamports(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8
	dataLen := int(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4

	if len(data) < recordMinSize+dataLen {
		return nil, fmt.Errorf("%w: declared %d data bytes, record has %d",
			ErrInvalidRecord, dataLen, len(data)-recordMinSize)
	}

	var accountData []byte
	if dataLen > 0 {
		accountData = make([]byte, dataLen)
		copy(accountData, data[offset:offset+dataLen])
		offset += dataLen
	}

	var owner types.Pubkey
	copy(owner[:], data[offset:offset+32])
	offset += 32
	executable := data[offset] != 0
	offset++
	rentEpoch := types.Epoch(binary.LittleEndian.Uint64(data[offset:]))

	return &types.Account{
		Lamports:   lamports,
		Data:       accountData,
		Owner:      owner,
		Executable: executable,
		RentEpoch:  rentEpoch,
	}, nil
}
