/*
Package dsl provides a fluent builder for constructing flows in Go code.

It is useful for tests, fixtures and programmatic flow generation. Build runs
the same graph checks as the editor, so a flow that builds is structurally valid.

	b := dsl.New("wf-1", "Inbox to Slack")
	b.Trigger("mail", "gmail").On("new_email").Config("triggerType", "poll").Then("notify")
	b.Action("notify", "slack", "send").Config("text", "{{ $json.subject }}")
	flow, err := b.Build()
*/
package dsl
