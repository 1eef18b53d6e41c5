package config

const (
	// Mainnet constants.
	MainnetRPCURL    = "https://api.mainnet-beta.solana.com"
	MainnetProgramID = "4zSrGy87rYtohmWK7PLBsojskZQa38GMwmoQkeK1nJSD"

	// Testnet constants.
	TestnetRPCURL    = "https://api.testnet.solana.com"
	TestnetProgramID = "4zSrGy87rYtohmWK7PLBsojskZQa38GMwmoQkeK1nJSD"

	// Devnet constants.
	DevnetRPCURL    = "https://api.devnet.solana.com"
	DevnetProgramID = "4zSrGy87rYtohmWK7PLBsojskZQa38GMwmoQkeK1nJSD"

	// Localnet constants, matching solana-test-validator defaults.
	LocalnetRPCURL    = "http://localhost:8899"
	LocalnetProgramID = "4zSrGy87rYtohmWK7PLBsojskZQa38GMwmoQkeK1nJSD"
)

const (
	// EnvRPCURL overrides the RPC URL of the selected environment.
	EnvRPCURL = "PRICEFEED_RPC_URL"
	// EnvProgramID overrides the program ID of the selected environment.
	EnvProgramID = "PRICEFEED_PROGRAM_ID"
)
