// Package formats provides parsers for Wavefront OBJ meshes and their MTL
// material libraries.
//
// Faces are triangulated and flattened while parsing, so a parsed OBJ holds
// one ready DrawBatch per diffuse texture. Unsupported statements are
// skipped with a warning on the configured logger.
package formats
