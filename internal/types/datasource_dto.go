package types

import "encoding/json"

// TransferKind 区分原生币转账与同质化代币转账
type TransferKind string

const (
	TransferNative TransferKind = "native"
	TransferToken  TransferKind = "token"
)

// TxEndpoint is one side of a UTXO transaction (amount in the chain's base integer unit).
type TxEndpoint struct {
	Address string `json:"address"`
	Value   int64  `json:"value"`
}

// NormalizedTx is the chain-agnostic transaction record produced by the
// datasource normalizers. Records are immutable once produced.
// EVM 交易使用 From/To/Value，UTXO 交易使用 Inputs/Outputs。
type NormalizedTx struct {
	Hash        string       `json:"hash"`
	BlockHeight int64        `json:"block_height"` // 0 if unknown
	Timestamp   int64        `json:"timestamp"`    // unix seconds, 0 for sources without one
	Fee         float64      `json:"fee"`          // native-unit amount (ETH / BTC)
	Kind        TransferKind `json:"kind"`
	// Token transfers only.
	ContractAddress string `json:"contract_address,omitempty"`
	// Account-model shape.
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Value string `json:"value,omitempty"` // raw integer amount (wei or token base units)
	// UTXO shape.
	Inputs  []TxEndpoint `json:"inputs,omitempty"`
	Outputs []TxEndpoint `json:"outputs,omitempty"`
}

// EtherscanTx 为 Etherscan account 模块返回的单条交易（txlist 与 tokentx 共用）
type EtherscanTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	GasUsed         string `json:"gasUsed"`
	GasPrice        string `json:"gasPrice"`
	ContractAddress string `json:"contractAddress"`
	TokenSymbol     string `json:"tokenSymbol,omitempty"`
	TokenDecimal    string `json:"tokenDecimal,omitempty"`
}

// EtherscanListResp Etherscan 列表接口外层响应。
// Result 为交易数组，出错时为字符串，故先保留原始 JSON。
type EtherscanListResp struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// MempoolTxStatus holds the confirmation metadata of a mempool.space transaction.
type MempoolTxStatus struct {
	Confirmed   bool  `json:"confirmed"`
	BlockHeight int64 `json:"block_height"`
	BlockTime   int64 `json:"block_time"`
}

// MempoolPrevout is the previous output spent by an input.
type MempoolPrevout struct {
	ScriptpubkeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

// MempoolVin is one input of a mempool.space transaction.
type MempoolVin struct {
	Prevout MempoolPrevout `json:"prevout"`
}

// MempoolVout is one output of a mempool.space transaction.
type MempoolVout struct {
	ScriptpubkeyAddress string `json:"scriptpubkey_address"`
	Value               int64  `json:"value"`
}

// MempoolTx 为 mempool.space /address/{addr}/txs 返回的单条交易
type MempoolTx struct {
	Txid   string          `json:"txid"`
	Fee    int64           `json:"fee"` // satoshi
	Status MempoolTxStatus `json:"status"`
	Vin    []MempoolVin    `json:"vin"`
	Vout   []MempoolVout   `json:"vout"`
}
