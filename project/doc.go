// Package project locates folders inside the project tree a notebook runs in.
//
// The tree is rooted at the base directory, the working directory of the
// process unless SetBaseDir says otherwise. Searches never descend into a
// library root: a directory holding a pyvenv.cfg marker, which is a virtual
// environment or similar packaging boundary rather than project content.
package project
