/*
Package domain contains the workflow graph model shared by every other package.

It is kept free of I/O and of schema knowledge: validators, the expression
resolver and the editor all operate on these types.

# Key Entities

  - Node: a trigger, action, logic or AI step, with a schema-governed Config map.
  - Connection: a directed edge from a node's source handle to a target node.
  - Flow: the aggregate owning nodes and connections, persisted as plain JSON.
  - FlowDiff: the change set between two flow snapshots.
*/
package domain
