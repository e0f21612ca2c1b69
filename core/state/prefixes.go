package state

var (
	rewardsInitializedKey     = []byte("rewards/initialized")
	rewardsEpochKeyFormat     = "rewards/epoch/%020d"
	rewardsBalanceKeyFormat   = "rewards/epoch/%020d/balance/%x"
	rewardsClaimedKeyFormat   = "rewards/epoch/%020d/claimed/%x"
	rewardsScheduleKeyFormat  = "rewards/schedule/%020d"
	epochCurrentKey           = []byte("epoch/current")
	epochEndKeyFormat         = "epoch/%020d/end"
	blocklistKeyFormat        = "blocklist/%x"
	instrumentBalanceKeyFmt   = "instrument/%s/balance/%x"
	instrumentSupplyKeyFormat = "instrument/%s/supply"
	creditsSupplyKey          = []byte("credits/supply")
	creditsBalanceKeyFormat   = "credits/balance/%x"
	eventLogHeadKey           = []byte("eventlog/head")
	eventLogEntryKeyFormat    = "eventlog/%020d"
)
