/*
Package agentflow is the engine behind a visual workflow automation editor.

A workflow is a directed acyclic graph of trigger, action and logic nodes.
Agentflow owns the editing side of such a workflow: schema-driven node
configuration with conditional field visibility, staged readiness validation,
an expression language for referencing upstream data, and a command-based
editor with undo and redo. Executing workflows is left to a separate runner.

# Concept

Apps are described by schemas (resources, operations, triggers and their
fields) held in a registry. A node selects an app and an operation, and its
config is validated against the fields of that operation. The workflow
validator then classifies the whole flow into one of three stages:

  - setup: no trigger yet, or a trigger with no trigger type.
  - configure: triggers exist but something still needs attention.
  - ready: no errors and no warnings, the flow can execute.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/techwithparamesh/agentflow"
		"github.com/techwithparamesh/agentflow/pkg/domain"
		"github.com/techwithparamesh/agentflow/pkg/editor"
	)

	func main() {
		ws, err := agentflow.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		ed, err := ws.Create(ctx, "Hello")
		if err != nil {
			log.Fatal(err)
		}

		err = ed.Apply(&editor.AddNode{Node: domain.Node{
			ID: "hook", Type: domain.NodeTypeTrigger, AppID: "webhook", TriggerID: "incoming",
			Config: map[string]any{"triggerType": "webhook", "path": "/hello"},
		}})
		if err != nil {
			log.Fatal(err)
		}

		res := ws.Validate(ed.Flow())
		fmt.Println(res.Stage)
	}
*/
package agentflow
