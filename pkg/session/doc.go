/*
Package session implements session management and persistence orchestration.

It serializes turns of the same session (in process, and across replicas through a
DistributedLocker) and tiers storage: a fast primary store for every save and an
optional durable store that receives force-persisted saves immediately and the
rest on Flush.
*/
package session
