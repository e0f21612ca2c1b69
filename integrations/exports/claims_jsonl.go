package exports

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"rewardledger/crypto"
)

type claimLine struct {
	Sequence uint64 `json:"sequence"`
	Epoch    uint64 `json:"epoch"`
	Address  string `json:"address"`
	Amount   string `json:"amount"`
	Points   string `json:"points"`
	Route    string `json:"route"`
}

// ClaimsJSONL builds a JSON Lines export for the supplied claims and returns
// the serialised payload alongside a checksum. Amounts are decimal strings.
func ClaimsJSONL(records []ClaimRecord) ([]byte, string, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	for _, record := range records {
		line := claimLine{
			Sequence: record.Sequence,
			Epoch:    record.Epoch,
			Address:  crypto.Format(record.Address),
			Amount:   strconv.FormatUint(record.Amount, 10),
			Points:   strconv.FormatUint(record.Points, 10),
			Route:    record.Route,
		}
		if err := encoder.Encode(line); err != nil {
			return nil, "", err
		}
	}
	data := buffer.Bytes()
	checksum := sha256.Sum256(data)
	return data, hex.EncodeToString(checksum[:]), nil
}
