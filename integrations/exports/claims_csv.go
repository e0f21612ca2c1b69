package exports

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"strconv"

	"rewardledger/crypto"
)

// ClaimsCSV builds a CSV export for the supplied claims and returns the
// serialised data alongside a SHA-256 checksum of the payload.
func ClaimsCSV(records []ClaimRecord) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)
	header := []string{"sequence", "epoch", "address", "amount", "points", "route"}
	if err := writer.Write(header); err != nil {
		return nil, "", err
	}
	for _, record := range records {
		row := []string{
			strconv.FormatUint(record.Sequence, 10),
			strconv.FormatUint(record.Epoch, 10),
			crypto.Format(record.Address),
			strconv.FormatUint(record.Amount, 10),
			strconv.FormatUint(record.Points, 10),
			record.Route,
		}
		if err := writer.Write(row); err != nil {
			return nil, "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}
	data := buffer.Bytes()
	checksum := sha256.Sum256(data)
	return data, hex.EncodeToString(checksum[:]), nil
}
