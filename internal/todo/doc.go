// Package todo holds the task list: tasks, their ordering, queries over them,
// and the file they are saved to.
//
// The task file is a JSON array of records, kept in list order:
//
//	[
//	    {
//	        "title": "Buy milk",
//	        "done": false,
//	        "priority": 1,
//	        "deadline": "2030-01-01"
//	    }
//	]
//
// priority is 1 (High), 2 (Medium) or 3 (Low); deadline is YYYY-MM-DD or
// null. Files written by older versions carry only title and done and still
// load: a missing or unknown priority becomes Medium and a missing or
// unparseable deadline becomes none.
//
// # Outcomes
//
// Operations return a Result tagged as success, informational (nothing went
// wrong but nothing changed, for example a cancelled removal or a task that
// was already done), or input error. Input errors wrap one of the Err*
// sentinels in an *InputError and never modify the list.
//
// # Saving
//
// FileStore writes a temporary file beside the target and renames it over
// the old one. A load that finds no file, or a file that fails the embedded
// JSON Schema, starts with an empty list instead of failing.
package todo
