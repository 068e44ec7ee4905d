package config

import "github.com/zeromicro/go-zero/rest"

// ApiConf is the endpoint configuration of one external data source.
// Url 可在测试中指向 httptest 假服务
type ApiConf struct {
	Url    string
	ApiKey string `json:",optional"`
}

type Config struct {
	rest.RestConf
	Postgres struct {
		DSN string
	}
	Kafka struct {
		Broker string `json:",optional"`
		Topic  string `json:",optional"`
	}
	// Chain indexers.
	Etherscan ApiConf
	Mempool   ApiConf
	// Historical price sources, in waterfall order.
	CryptoCompare ApiConf
	DefiLlama     ApiConf
	Moralis       struct {
		MetadataUrl string
		PriceUrl    string
		ApiKey      string `json:",optional"`
	}
	// Opaque RPC collaborators.
	ScoringModel struct {
		Url string
	}
	CommunityOracle struct {
		Url string
	}
}
