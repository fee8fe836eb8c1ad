package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rosmsg-packages/internal/types"
)

const actionSectionDelimiter = "---"

// ExpandAction splits an action schema into goal, result and feedback
// sections and derives the seven message schemas the action transport
// uses. The returned order is stable: Goal, Result, Feedback, Action,
// ActionGoal, ActionResult, ActionFeedback.
func ExpandAction(schema types.InterfaceSchema) ([]types.DerivedMessage, error) {
	if schema.Kind != types.InterfaceKindAction {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("schema %s is not an action", schema.Name))
	}
	sections := splitActionSections(schema.Body)
	if len(sections) != 3 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("action schema %s must have exactly 3 sections separated by %s, found %d", schema.Name, actionSectionDelimiter, len(sections)))
	}
	base := schema.Name
	return []types.DerivedMessage{
		{Name: base + "Goal", Body: sections[0]},
		{Name: base + "Result", Body: sections[1]},
		{Name: base + "Feedback", Body: sections[2]},
		{Name: base + "Action", Body: fmt.Sprintf("%[1]sActionGoal action_goal\n%[1]sActionResult action_result\n%[1]sActionFeedback action_feedback\n", base)},
		{Name: base + "ActionGoal", Body: fmt.Sprintf("Header header\nactionlib_msgs/GoalID goal_id\n%sGoal goal\n", base)},
		{Name: base + "ActionResult", Body: fmt.Sprintf("Header header\nactionlib_msgs/GoalStatus status\n%sResult result\n", base)},
		{Name: base + "ActionFeedback", Body: fmt.Sprintf("Header header\nactionlib_msgs/GoalStatus status\n%sFeedback feedback\n", base)},
	}, nil
}

// ActionBaseName strips the .action suffix from a schema filename.
func ActionBaseName(filename string) string {
	return strings.TrimSuffix(filename, types.InterfaceKindAction.Extension())
}

func splitActionSections(body string) []string {
	sections := [][]string{{}}
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, actionSectionDelimiter) {
			sections = append(sections, []string{})
			continue
		}
		sections[len(sections)-1] = append(sections[len(sections)-1], line)
	}
	joined := make([]string, 0, len(sections))
	for _, section := range sections {
		joined = append(joined, strings.Join(section, "\n"))
	}
	return joined
}
