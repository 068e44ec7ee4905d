package constant

import (
	"regexp"

	"github.com/ethereum/go-ethereum/common"
)

type Network string

const (
	NetworkEthereum Network = "Ethereum"
	NetworkBitcoin  Network = "Bitcoin"
	NetworkSolana   Network = "Solana"
	NetworkUnknown  Network = "Unknown"
)

// SupportedNetworks lists all networks that are currently wired to a feature extractor.
var SupportedNetworks = []Network{
	NetworkEthereum,
	NetworkBitcoin,
}

// IsNetworkSupported checks if a given network is in the list of supported networks.
func IsNetworkSupported(network Network) bool {
	for _, supported := range SupportedNetworks {
		if supported == network {
			return true
		}
	}
	return false
}

var base58Pattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)

// DetectAddressNetwork 根据地址格式推断所属网络。
// 判定顺序：EVM (0x+40位hex) -> 比特币主网/测试网前缀 -> Solana Base58
func DetectAddressNetwork(address string) Network {
	if common.IsHexAddress(address) {
		return NetworkEthereum
	}

	if isBitcoinAddress(address) {
		return NetworkBitcoin
	}

	// Solana (Base58, 36–44 chars)
	if len(address) >= 36 && len(address) <= 44 && base58Pattern.MatchString(address) {
		return NetworkSolana
	}

	return NetworkUnknown
}

func isBitcoinAddress(address string) bool {
	if len(address) == 0 {
		return false
	}

	// Mainnet legacy (1/3) 与 testnet legacy (m/n/2)
	switch address[0] {
	case '1', '3', 'm', 'n', '2':
		if len(address) >= 26 && len(address) <= 35 && base58Pattern.MatchString(address) {
			return true
		}
	}

	// Bech32: bc1q/bc1p 主网, tb1q/tb1p 测试网
	if len(address) > 4 {
		prefix := toLowerPrefix(address, 4)
		if prefix == "bc1q" || prefix == "bc1p" || prefix == "tb1q" || prefix == "tb1p" {
			return true
		}
	}

	return false
}

func toLowerPrefix(s string, n int) string {
	b := []byte(s[:n])
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
