package index

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/hubline-chat/hubline-server/internal/apperr"
)

// recoveryLogSize is the fixed on-disk size of a recovery log: a 128-bit id
// and nothing else.
const recoveryLogSize = 16

// encodeRecoveryID serializes id as a little-endian 128-bit integer. google/
// uuid stores its 16 bytes in RFC 4122 (big-endian) order, so the bytes are
// reversed; this is deliberately endianness-fixed, unlike the platform-
// dependent native-endian write this logic replaces.
func encodeRecoveryID(id uuid.UUID) [recoveryLogSize]byte {
	var out [recoveryLogSize]byte
	for i := range out {
		out[i] = id[recoveryLogSize-1-i]
	}
	return out
}

func decodeRecoveryID(buf [recoveryLogSize]byte) uuid.UUID {
	var out uuid.UUID
	for i := range out {
		out[i] = buf[recoveryLogSize-1-i]
	}
	return out
}

// writeRecoveryLog atomically replaces the recovery log at path with id: it
// writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write never leaves a truncated or corrupt log.
func writeRecoveryLog(path string, id uuid.UUID) error {
	buf := encodeRecoveryID(id)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf[:], 0o644); err != nil {
		return apperr.Wrap(apperr.KindDataError, string(apperr.DataWrite), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperr.Wrap(apperr.KindDataError, string(apperr.DataWrite), err)
	}
	return nil
}

// readRecoveryLog reads the recovery log at path. ok is false if no log has
// ever been written for this channel.
func readRecoveryLog(path string) (id uuid.UUID, ok bool, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, apperr.Wrap(apperr.KindDataError, string(apperr.DataRead), readErr)
	}
	if len(data) != recoveryLogSize {
		return uuid.Nil, false, apperr.Wrap(apperr.KindDataError, string(apperr.DataDeserialize),
			os.ErrInvalid)
	}
	var buf [recoveryLogSize]byte
	copy(buf[:], data)
	return decodeRecoveryID(buf), true, nil
}

func recoveryLogPath(dataDir string, hubID, channelID uuid.UUID) string {
	return filepath.Join(channelDir(dataDir, hubID, channelID), "log")
}

func indexPath(dataDir string, hubID, channelID uuid.UUID) string {
	return filepath.Join(channelDir(dataDir, hubID, channelID), "index")
}

func channelDir(dataDir string, hubID, channelID uuid.UUID) string {
	return filepath.Join(dataDir, "hubs", hubID.String(), channelID.String())
}
