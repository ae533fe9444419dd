// Package iof decodes IOF Data Standard 3.0 result lists.
//
// Only the ResultList subset needed for import is modelled:
//
//	ResultList
//	└── Event
//	└── ClassResult*
//	    ├── Class
//	    ├── Course*
//	    └── PersonResult*
//	        ├── Person
//	        ├── Organisation
//	        └── Result* (PersonRaceResult)
//	            └── SplitTime*
//
// Enumerated values are kept as raw strings on the decoded model and parsed
// with the Parse* functions, so that Validate can report every bad value with
// its document path instead of failing on the first one.
//
// Natural keys built from names go through NormalizeKey. Two spellings that
// differ only in Unicode composition, case or whitespace map to the same key.
package iof
