package queue

import (
	"encoding/json"

	"riskscan/internal/types"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/zeromicro/go-zero/core/logx"
)

// Producer 将分析结论异步推送到 Kafka，供下游风控系统消费
type Producer struct {
	producer *kafka.Producer
	topic    string
}

// NewProducer connects to the broker; the verdict stream is optional, so a
// connection failure is returned rather than fatal.
func NewProducer(broker, topic string) (*Producer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": broker})
	if err != nil {
		return nil, err
	}
	return &Producer{producer: p, topic: topic}, nil
}

// PublishVerdict 发布单条分析结论，失败仅记录日志，不影响调用方
func (p *Producer) PublishVerdict(verdict *types.AnalysisVerdict) {
	data, err := json.Marshal(verdict)
	if err != nil {
		logx.Errorf("序列化分析结论失败: %v", err)
		return
	}

	message := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Value:          data,
	}
	if err := p.producer.Produce(message, nil); err != nil {
		logx.Errorf("发送分析结论到 Kafka 失败: %v", err)
		return
	}
	p.producer.Flush(1000)
}

// Close flushes and releases the underlying producer.
func (p *Producer) Close() {
	p.producer.Flush(3000)
	p.producer.Close()
}
