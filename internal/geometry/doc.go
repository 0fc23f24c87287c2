// Package geometry converts detected shapes between the three coordinate
// spaces of the scene.
//
// # Coordinate Spaces
//
//   - Image space: pixel coordinates of the captured frame, origin top-left.
//   - Screen space: display pixels, origin bottom-left. The capture sensor is
//     mounted rotated relative to the display, so image X runs down the screen
//     and image Y runs right to left.
//   - World space: the 3-D physics scene. The camera sits at
//     (0, 0, -captureWidth) looking along +Z.
//
// Positions reach world space by casting a camera ray through the screen
// point and taking the point at RaycastDistance along it. Sizes are not
// raycast: diameters and lengths use the linear image-to-screen scale.
package geometry
