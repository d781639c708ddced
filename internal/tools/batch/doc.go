// Package batch runs one Gmail call per message ID in fixed-size chunks and
// renders the outcome for the batch tools.
//
// Calls inside a chunk run concurrently. IDs that fail are retried once, one
// at a time, before the next chunk starts, and whatever still fails is
// reported per ID instead of failing the whole batch.
package batch
