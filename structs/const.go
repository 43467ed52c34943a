package structs

const (
	PublicKeyLength             = 48
	SignatureLength             = 96
	WithdrawalCredentialsLength = 32

	// DepositAmountGwei is the amount every registry key is deposited with.
	DepositAmountGwei uint64 = 32_000_000_000
)
