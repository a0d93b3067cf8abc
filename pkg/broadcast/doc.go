// Package broadcast provides type-safe, in-process message fan-out.
//
// It is the delivery layer behind session change notifications: a single
// producer (an identity provider adapter, a database listener) publishes
// messages and any number of short-lived consumers subscribe, optionally
// scoped to a topic.
//
// Basic usage:
//
//	b := broadcast.NewMemoryBroadcaster[string](10)
//	defer b.Close()
//
//	sub, err := b.Subscribe(ctx, broadcast.WithTopic("token-123"))
//	if err != nil {
//		return err
//	}
//	defer sub.Close()
//
//	_ = b.Broadcast(ctx, broadcast.Message[string]{Topic: "token-123", Data: "signed_out"})
//
//	for msg := range sub.Receive() {
//		fmt.Println(msg.Data)
//	}
//
// Publishing never blocks. When a subscriber's buffer is full the message is
// dropped for that subscriber and counted in Dropped; the subscriber stays
// registered. Subscribers are closed when their context is cancelled, when
// Close is called on them, or when the broadcaster is closed.
package broadcast
