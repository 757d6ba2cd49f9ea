// Package order 订单服务
// 财务引擎不拥有订单生命周期，这里只承载触发财务落账的状态流转入口
// 和签收货款的骑手余额侧写
package order

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// riderBalanceKey 骑手待上缴货款余额的缓存键
const riderBalanceKey = "rider:cod_balance:%d"

// RiderBalance 骑手货款余额累加器
// 签收后把回收的货款累加到骑手名下，用于线下对账时的快速参考；
// 写入是尽力而为的，调用方不会因这里失败而回滚
type RiderBalance struct {
	client *redis.Client
}

// NewRiderBalance 创建骑手余额累加器
func NewRiderBalance(client *redis.Client) *RiderBalance {
	return &RiderBalance{client: client}
}

// Accumulate 累加骑手回收的货款
func (b *RiderBalance) Accumulate(ctx context.Context, riderID int64, amount float64) error {
	if amount <= 0 {
		return nil
	}
	key := fmt.Sprintf(riderBalanceKey, riderID)
	return b.client.IncrByFloat(ctx, key, amount).Err()
}

// Get 读取骑手当前余额
func (b *RiderBalance) Get(ctx context.Context, riderID int64) (float64, error) {
	key := fmt.Sprintf(riderBalanceKey, riderID)
	value, err := b.client.Get(ctx, key).Float64()
	if err == redis.Nil {
		return 0, nil
	}
	return value, err
}

// Reset 清零骑手余额（骑手交款后由运营触发）
func (b *RiderBalance) Reset(ctx context.Context, riderID int64) error {
	key := fmt.Sprintf(riderBalanceKey, riderID)
	return b.client.Del(ctx, key).Err()
}
