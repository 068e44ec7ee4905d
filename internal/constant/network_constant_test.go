package constant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectAddressNetwork(t *testing.T) {
	cases := []struct {
		name     string
		address  string
		expected Network
	}{
		{"evm checksummed", "0xdAC17F958D2ee523a2206206994597C13D831ec7", NetworkEthereum},
		{"evm lowercase", "0xdac17f958d2ee523a2206206994597c13d831ec7", NetworkEthereum},
		{"btc legacy p2pkh", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", NetworkBitcoin},
		{"btc legacy p2sh", "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", NetworkBitcoin},
		{"btc bech32", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", NetworkBitcoin},
		{"btc taproot", "bc1p5d7rjq7g6rdk2yhzks9smlaqtedr4dekq08ge8ztwac72sfr9rusxg3297", NetworkBitcoin},
		{"btc testnet bech32", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", NetworkBitcoin},
		{"btc testnet legacy", "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", NetworkBitcoin},
		{"solana mint", "So11111111111111111111111111111111111111112", NetworkSolana},
		{"short garbage", "abc", NetworkUnknown},
		{"hex but wrong length", "0x1234", NetworkUnknown},
		{"base58 but too short for solana", "1A1zP1eP5QGe", NetworkUnknown},
		{"empty", "", NetworkUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectAddressNetwork(tc.address))
		})
	}
}

func TestIsNetworkSupported(t *testing.T) {
	assert.True(t, IsNetworkSupported(NetworkEthereum))
	assert.True(t, IsNetworkSupported(NetworkBitcoin))
	assert.False(t, IsNetworkSupported(NetworkSolana))
	assert.False(t, IsNetworkSupported(NetworkUnknown))
}
