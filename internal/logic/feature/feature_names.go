package feature

// 特征名到向量位置的映射由外部评分模型训练时固定，
// 两张表的顺序逐字节不可变动。

// BtcFeatureNames is the fixed feature order of the Bitcoin scoring model.
var BtcFeatureNames = []string{
	"Time step",
	"num_txs_as_sender",
	"num_txs_as_receiver",
	"first_block_appeared_in",
	"last_block_appeared_in",
	"lifetime_in_blocks",
	"total_txs",
	"first_sent_block",
	"first_received_block",
	"num_timesteps_appeared_in",
	"btc_transacted_total",
	"btc_transacted_min",
	"btc_transacted_max",
	"btc_transacted_mean",
	"btc_transacted_median",
	"btc_sent_total",
	"btc_sent_min",
	"btc_sent_max",
	"btc_sent_mean",
	"btc_sent_median",
	"btc_received_total",
	"btc_received_min",
	"btc_received_max",
	"btc_received_mean",
	"btc_received_median",
	"fees_total",
	"fees_min",
	"fees_max",
	"fees_mean",
	"fees_median",
	"fees_as_share_total",
	"fees_as_share_min",
	"fees_as_share_max",
	"fees_as_share_mean",
	"fees_as_share_median",
	"blocks_btwn_txs_total",
	"blocks_btwn_txs_min",
	"blocks_btwn_txs_max",
	"blocks_btwn_txs_mean",
	"blocks_btwn_txs_median",
	"blocks_btwn_input_txs_total",
	"blocks_btwn_input_txs_min",
	"blocks_btwn_input_txs_max",
	"blocks_btwn_input_txs_mean",
	"blocks_btwn_input_txs_median",
	"blocks_btwn_output_txs_total",
	"blocks_btwn_output_txs_min",
	"blocks_btwn_output_txs_max",
	"blocks_btwn_output_txs_mean",
	"blocks_btwn_output_txs_median",
	"num_addr_transacted_multiple",
	"transacted_w_address_total",
	"transacted_w_address_min",
	"transacted_w_address_max",
	"transacted_w_address_mean",
	"transacted_w_address_median",
	"partner_transaction_ratio",
	"activity_density",
	"transaction_size_variance",
	"flow_imbalance",
	"temporal_spread",
	"fee_percentile",
	"interaction_intensity",
	"value_per_transaction",
	"burst_activity",
	"mixing_intensity",
}

// EthFeatureNames is the fixed feature order of the Ethereum scoring model.
var EthFeatureNames = []string{
	"num_txs_as_sender",
	"num_txs_as_receiver",
	"total_txs",
	"first_block_appeared_in",
	"last_block_appeared_in",
	"lifetime_in_blocks",
	"num_timesteps_appeared_in",
	"first_sent_block",
	"first_received_block",
	"btc_transacted_total",
	"btc_transacted_min",
	"btc_transacted_max",
	"btc_transacted_mean",
	"btc_transacted_median",
	"btc_sent_total",
	"btc_sent_min",
	"btc_sent_max",
	"btc_sent_mean",
	"btc_sent_median",
	"btc_received_total",
	"btc_received_min",
	"btc_received_max",
	"btc_received_mean",
	"btc_received_median",
	"fees_total",
	"fees_min",
	"fees_max",
	"fees_mean",
	"fees_median",
	"fees_as_share_total",
	"fees_as_share_min",
	"fees_as_share_max",
	"fees_as_share_mean",
	"fees_as_share_median",
	"blocks_btwn_txs_total",
	"blocks_btwn_txs_min",
	"blocks_btwn_txs_max",
	"blocks_btwn_txs_mean",
	"blocks_btwn_txs_median",
	"blocks_btwn_input_txs_total",
	"blocks_btwn_input_txs_min",
	"blocks_btwn_input_txs_max",
	"blocks_btwn_input_txs_mean",
	"blocks_btwn_input_txs_median",
	"blocks_btwn_output_txs_total",
	"blocks_btwn_output_txs_min",
	"blocks_btwn_output_txs_max",
	"blocks_btwn_output_txs_mean",
	"blocks_btwn_output_txs_median",
	"transacted_w_address_total",
	"num_addr_transacted_multiple",
	"transacted_w_address_min",
	"transacted_w_address_max",
	"transacted_w_address_mean",
	"transacted_w_address_median",
}

// BuildVector 按固定顺序组装特征向量，未计算出的特征名统一取 0.0。
// 这是唯一的缺省值填充点。
func BuildVector(names []string, features map[string]float64) []float64 {
	vector := make([]float64, len(names))
	for i, name := range names {
		if value, ok := features[name]; ok {
			vector[i] = value
		}
	}
	return vector
}
