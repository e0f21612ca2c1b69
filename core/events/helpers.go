package events

import (
	"strconv"

	"rewardledger/crypto"
)

func formatAddress(addr [20]byte) string {
	return crypto.Format(addr)
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
