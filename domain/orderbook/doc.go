// Package orderbook implements the resting-liquidity side of the
// matching engine: the order model, the price-time priority queues for
// each side of a book, and the per-instrument book registry.
//
// Books are strictly isolated per instrument and are only ever touched
// by the sequential matching loop, so the package carries no locks.
package orderbook
