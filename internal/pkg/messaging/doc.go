// Package messaging publishes and consumes broker messages behind one small
// interface. Drivers exist for NSQ, NATS, Kafka and Google Pub/Sub, plus an
// in-process Memory broker for local runs and tests.
//
// Handlers return an error to ask for redelivery; drivers ack on nil.
package messaging
