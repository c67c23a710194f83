// Package config loads the add-in configuration file.
//
// The file is HCL:
//
//	log_level           = "debug"
//	default_result_mode = "simplest"
//	max_arguments       = 255
//
//	function "Scale" {
//	  category    = "Math"
//	  help        = "Multiplies x by a factor"
//	  args        = ["x", "by"]
//	  thread_safe = true
//	  defaults    = { by = 2 }
//	}
//
// Function blocks override the metadata of the export with the same name
// (ignoring case). Defaults are converted to wire values and replace
// Missing arguments at call time.
package config
