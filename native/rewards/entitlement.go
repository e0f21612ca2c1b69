package rewards

import (
	"fmt"

	"github.com/holiman/uint256"
)

// entitlement computes pool * (balance - claimed) / supply, truncating, with a
// 256-bit intermediate product.
func entitlement(pool, balance, claimed, supply uint64) (uint64, error) {
	if claimed > balance {
		return 0, fmt.Errorf("%w: claimed %d exceeds balance %d", ErrInvariant, claimed, balance)
	}
	unclaimed := balance - claimed
	if unclaimed == 0 || pool == 0 {
		return 0, nil
	}
	if supply == 0 {
		return 0, fmt.Errorf("%w: zero supply with %d unclaimed points", ErrInvariant, unclaimed)
	}
	if unclaimed > supply {
		return 0, fmt.Errorf("%w: unclaimed %d exceeds supply %d", ErrInvariant, unclaimed, supply)
	}
	var out uint256.Int
	if _, overflow := out.MulDivOverflow(uint256.NewInt(pool), uint256.NewInt(unclaimed), uint256.NewInt(supply)); overflow || !out.IsUint64() {
		return 0, fmt.Errorf("%w: entitlement exceeds 64 bits", ErrInvariant)
	}
	return out.Uint64(), nil
}

type position struct {
	exists  bool
	pool    uint64
	supply  uint64
	balance uint64
	claimed uint64
}

func loadPosition(st Reader, user [20]byte, epoch uint64) (position, error) {
	var (
		p   position
		err error
	)
	if p.exists, err = st.RewardsEpochExists(epoch); err != nil || !p.exists {
		return p, err
	}
	if p.pool, err = st.RewardsSchedule(epoch); err != nil {
		return p, err
	}
	if p.supply, err = st.RewardsEpochSupply(epoch); err != nil {
		return p, err
	}
	if p.balance, err = st.RewardsUserBalance(epoch, user); err != nil {
		return p, err
	}
	if p.claimed, err = st.RewardsUserClaimed(epoch, user); err != nil {
		return p, err
	}
	return p, nil
}

func (p position) entitlement() (uint64, error) {
	if !p.exists {
		return 0, nil
	}
	return entitlement(p.pool, p.balance, p.claimed, p.supply)
}
