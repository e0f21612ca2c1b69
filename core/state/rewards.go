package state

import "fmt"

// storedEpochRecord marks that an epoch received at least one accrual and
// carries its aggregate point supply.
type storedEpochRecord struct {
	Supply uint64
}

func rewardsEpochKey(epoch uint64) []byte {
	return []byte(fmt.Sprintf(rewardsEpochKeyFormat, epoch))
}

func rewardsBalanceKey(epoch uint64, addr [20]byte) []byte {
	return []byte(fmt.Sprintf(rewardsBalanceKeyFormat, epoch, addr[:]))
}

func rewardsClaimedKey(epoch uint64, addr [20]byte) []byte {
	return []byte(fmt.Sprintf(rewardsClaimedKeyFormat, epoch, addr[:]))
}

func rewardsScheduleKey(epoch uint64) []byte {
	return []byte(fmt.Sprintf(rewardsScheduleKeyFormat, epoch))
}

// RewardsEpochExists reports whether the epoch record has been materialised.
func (m *Manager) RewardsEpochExists(epoch uint64) (bool, error) {
	return m.KVGet(rewardsEpochKey(epoch), nil)
}

// RewardsEpochSupply returns the total points accrued in the epoch, or zero
// when the epoch has no record.
func (m *Manager) RewardsEpochSupply(epoch uint64) (uint64, error) {
	var record storedEpochRecord
	if _, err := m.KVGet(rewardsEpochKey(epoch), &record); err != nil {
		return 0, err
	}
	return record.Supply, nil
}

// SetRewardsEpochSupply writes the epoch supply, creating the record if needed.
func (m *Manager) SetRewardsEpochSupply(epoch, supply uint64) error {
	return m.KVPut(rewardsEpochKey(epoch), storedEpochRecord{Supply: supply})
}

// RewardsUserBalance returns the cumulative points accrued by addr in epoch.
func (m *Manager) RewardsUserBalance(epoch uint64, addr [20]byte) (uint64, error) {
	return m.loadUint64(rewardsBalanceKey(epoch, addr))
}

// SetRewardsUserBalance stores the cumulative points for addr in epoch.
func (m *Manager) SetRewardsUserBalance(epoch uint64, addr [20]byte, balance uint64) error {
	return m.writeUint64(rewardsBalanceKey(epoch, addr), balance)
}

// RewardsUserClaimed returns the points of addr already converted to payout.
func (m *Manager) RewardsUserClaimed(epoch uint64, addr [20]byte) (uint64, error) {
	return m.loadUint64(rewardsClaimedKey(epoch, addr))
}

// SetRewardsUserClaimed stores the claimed point watermark for addr in epoch.
func (m *Manager) SetRewardsUserClaimed(epoch uint64, addr [20]byte, claimed uint64) error {
	return m.writeUint64(rewardsClaimedKey(epoch, addr), claimed)
}

// RewardsSchedule returns the reward pool assigned to epoch; unset is zero.
func (m *Manager) RewardsSchedule(epoch uint64) (uint64, error) {
	return m.loadUint64(rewardsScheduleKey(epoch))
}

// SetRewardsSchedule overwrites the reward pool assigned to epoch.
func (m *Manager) SetRewardsSchedule(epoch, amount uint64) error {
	return m.writeUint64(rewardsScheduleKey(epoch), amount)
}

// RewardsInitialized reports whether the bootstrap schedule has been seeded.
func (m *Manager) RewardsInitialized() (bool, error) {
	var flag bool
	if _, err := m.KVGet(rewardsInitializedKey, &flag); err != nil {
		return false, err
	}
	return flag, nil
}

// SetRewardsInitialized marks the bootstrap as done.
func (m *Manager) SetRewardsInitialized() error {
	return m.KVPut(rewardsInitializedKey, true)
}
