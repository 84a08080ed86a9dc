// Package surface implements the render surface the block tree mounts into:
// a small in-memory element tree whose nodes can be swapped, hidden, focused
// and listened to. Renderers (see pkg/renderers/html) serialise the tree;
// the block packages never assume a concrete rendering technology.
package surface
