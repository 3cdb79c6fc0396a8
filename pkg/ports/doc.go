/*
Package ports defines the driven ports (interfaces) of agentflow.

These interfaces decouple the editing core from external implementations, so a
host can keep flows in memory, on disk or in Redis without the core changing.

# Key Interfaces

  - FlowStore: persists and loads flows in their plain JSON layout.
  - DistributedLocker: serializes writes to one flow across replicas.
*/
package ports
