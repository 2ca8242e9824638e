package chat

import "github.com/cloudwego/eino/schema"

// Operation names the model may request. Dispatch happens over this finite
// set; anything else falls through to the unknown branch.
const (
	opCreateTask = "create_task"
	opListTasks  = "list_tasks"
	opUpdateTask = "update_task"
	opDeleteTask = "delete_task"
)

// taskCatalog returns the static tool descriptors offered to the model on
// the first completion call. The list is configuration, not state: it is
// rebuilt identically for every request.
func taskCatalog() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: opCreateTask,
			Desc: "Create a new task for the user",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"title": {
					Desc:     "The title of the task",
					Type:     schema.String,
					Required: true,
				},
				"description": {
					Desc:     "Optional description of the task",
					Type:     schema.String,
					Required: false,
				},
			}),
		},
		{
			Name: opListTasks,
			Desc: "List all tasks for the user, optionally filtered by completion status",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"completed": {
					Desc:     "Filter by completion status (true for completed, false for pending, omit for all)",
					Type:     schema.Boolean,
					Required: false,
				},
				"limit": {
					Desc:     "Maximum number of tasks to return (default 20)",
					Type:     schema.Integer,
					Required: false,
				},
			}),
		},
		{
			Name: opUpdateTask,
			Desc: "Update an existing task (title, description, or completion status)",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"task_id": {
					Desc:     "The UUID of the task to update",
					Type:     schema.String,
					Required: true,
				},
				"title": {
					Desc:     "New title for the task",
					Type:     schema.String,
					Required: false,
				},
				"description": {
					Desc:     "New description for the task",
					Type:     schema.String,
					Required: false,
				},
				"is_completed": {
					Desc:     "New completion status",
					Type:     schema.Boolean,
					Required: false,
				},
			}),
		},
		{
			Name: opDeleteTask,
			Desc: "Delete a task permanently",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"task_id": {
					Desc:     "The UUID of the task to delete",
					Type:     schema.String,
					Required: true,
				},
			}),
		},
	}
}
