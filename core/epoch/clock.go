package epoch

import (
	"errors"
	"fmt"

	"rewardledger/core/events"
	"rewardledger/core/types"
)

// GenesisEpoch is the epoch that is current before any epoch has been closed.
const GenesisEpoch uint64 = 1

var (
	ErrUnauthorized   = errors.New("epoch: unauthorized")
	ErrInvalidEndTime = errors.New("epoch: end time must be after the previous epoch end")
)

// Reader is the state the clock reads.
type Reader interface {
	EpochCurrent() (uint64, error)
	EpochEndTime(epoch uint64) (uint64, error)
}

// Writer is the state the clock mutates when an epoch is closed.
type Writer interface {
	Reader
	SetEpochCurrent(epoch uint64) error
	SetEpochEndTime(epoch, endTime uint64) error
	AppendEvent(evt *types.Event) error
}

// Clock numbers epochs and records when each one ended. Epoch numbering starts
// at GenesisEpoch; closing the current epoch makes the next one current.
type Clock struct {
	admin [20]byte
}

// NewClock returns a clock whose epochs may only be closed by admin.
func NewClock(admin [20]byte) *Clock {
	return &Clock{admin: admin}
}

// CurrentEpoch returns the epoch that accruals currently target.
func (c *Clock) CurrentEpoch(st Reader) (uint64, error) {
	current, err := st.EpochCurrent()
	if err != nil {
		return 0, err
	}
	if current == 0 {
		return GenesisEpoch, nil
	}
	return current, nil
}

// EpochEndTime returns the unix end time of a closed epoch. Epochs that have
// not been closed report zero.
func (c *Clock) EpochEndTime(st Reader, epoch uint64) (uint64, error) {
	return st.EpochEndTime(epoch)
}

// RegisterEpoch closes the current epoch at endTime and advances the clock.
// The closed epoch number is returned.
func (c *Clock) RegisterEpoch(st Writer, caller [20]byte, endTime uint64) (uint64, error) {
	if caller != c.admin {
		return 0, ErrUnauthorized
	}
	current, err := c.CurrentEpoch(st)
	if err != nil {
		return 0, err
	}
	if endTime == 0 {
		return 0, ErrInvalidEndTime
	}
	if current > GenesisEpoch {
		previous, err := st.EpochEndTime(current - 1)
		if err != nil {
			return 0, err
		}
		if endTime <= previous {
			return 0, fmt.Errorf("%w: %d <= %d", ErrInvalidEndTime, endTime, previous)
		}
	}
	if err := st.SetEpochEndTime(current, endTime); err != nil {
		return 0, err
	}
	if err := st.SetEpochCurrent(current + 1); err != nil {
		return 0, err
	}
	if err := st.AppendEvent(events.EpochRegistered{Epoch: current, EndTime: endTime}.Event()); err != nil {
		return 0, err
	}
	return current, nil
}
