package bi

// Column describes one field of a dataset table schema
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

// AgentRowSchema is the shared column layout of the daily and weekly agent
// tables. It mirrors the row shape produced by the push pipeline.
func AgentRowSchema() []Column {
	return []Column{
		{Name: "interaction_id", DataType: "String"},
		{Name: "workgroup", DataType: "String"},
		{Name: "user_name", DataType: "String"},
		{Name: "direction", DataType: "String"},
		{Name: "call_type", DataType: "String"},
		{Name: "state", DataType: "String"},
		{Name: "start_date", DataType: "DateTime"},
		{Name: "queue_date", DataType: "DateTime"},
		{Name: "connected_date", DataType: "DateTime"},
		{Name: "end_date", DataType: "DateTime"},
		{Name: "reference_date", DataType: "DateTime"},
		{Name: "queue_time", DataType: "Int64"},
		{Name: "corrected_queue_time", DataType: "Int64"},
		{Name: "abandoned", DataType: "Boolean"},
		{Name: "completed", DataType: "Boolean"},
	}
}
