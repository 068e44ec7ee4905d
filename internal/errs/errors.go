package errs

import "fmt"

// InvalidAddressError 表示输入地址为空或格式非法，属终态错误，不重试
type InvalidAddressError struct {
	Address string
	Reason  string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Address, e.Reason)
}

// NewInvalidAddress creates an InvalidAddressError with the given reason.
func NewInvalidAddress(address, reason string) error {
	return &InvalidAddressError{Address: address, Reason: reason}
}

// UnsupportedNetworkError 表示检测到的链类型尚未接入特征提取器
type UnsupportedNetworkError struct {
	Address string
	Network string
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("unsupported network %s for address %s", e.Network, e.Address)
}

// NewUnsupportedNetwork creates an UnsupportedNetworkError.
func NewUnsupportedNetwork(address, network string) error {
	return &UnsupportedNetworkError{Address: address, Network: network}
}

// DataSourceError 表示外部数据源（索引器/价格源/模型/社区）调用失败。
// Stage 标识失败环节，便于排查，不携带任何凭证信息。
type DataSourceError struct {
	Source  string // e.g., "etherscan", "mempool", "scoring-model"
	Stage   string // e.g., "fetch-transactions", "model-score"
	Address string
	Err     error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("%s failed at %s for %s: %v", e.Source, e.Stage, e.Address, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// NewDataSource wraps an upstream failure with source and stage context.
func NewDataSource(source, stage, address string, err error) error {
	return &DataSourceError{Source: source, Stage: stage, Address: address, Err: err}
}
